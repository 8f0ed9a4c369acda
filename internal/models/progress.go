package models

import "time"

// Progress is the per (student, course) completion ledger row.
type Progress struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	StudentID        uint      `gorm:"not null;uniqueIndex:idx_progresses_student_course" json:"student_id"`
	CourseID         uint      `gorm:"not null;uniqueIndex:idx_progresses_student_course;index" json:"course_id"`
	CompletedTasks   int       `gorm:"not null;default:0" json:"completed_tasks"`
	TotalTasks       int       `gorm:"not null;default:0" json:"total_tasks"`
	CompletedLessons int       `gorm:"not null;default:0" json:"completed_lessons"`
	TotalLessons     int       `gorm:"not null;default:0" json:"total_lessons"`
	QuizScore        *int      `json:"quiz_score"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PercentFormula derives a completion percentage from a progress row.
type PercentFormula func(Progress) int

// CombinedPercent counts tasks and lessons together. It is the formula used
// for grading, recalculation, lesson completion and quiz submission.
func CombinedPercent(p Progress) int {
	return roundedPercent(p.CompletedTasks+p.CompletedLessons, p.TotalTasks+p.TotalLessons)
}

// TaskOnlyPercent ignores the lesson dimension. The quiz gate and the student
// task listing report this one.
func TaskOnlyPercent(p Progress) int {
	return roundedPercent(p.CompletedTasks, p.TotalTasks)
}

// TasksComplete reports whether every task of the course has been passed.
func (p Progress) TasksComplete() bool {
	return p.TotalTasks == 0 || p.CompletedTasks == p.TotalTasks
}

// roundedPercent is round(100*completed/total) with halves rounded up, and
// 100 for an empty denominator.
func roundedPercent(completed, total int) int {
	if total <= 0 {
		return 100
	}
	if completed < 0 {
		completed = 0
	}
	return (200*completed + total) / (2 * total)
}
