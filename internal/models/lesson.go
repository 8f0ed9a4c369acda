package models

import "time"

// Lesson is a unit of reading material inside a course.
type Lesson struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"index;not null" json:"course_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LessonCompletion marks a lesson as finished by a student.
type LessonCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LessonID    uint      `gorm:"not null;uniqueIndex:idx_lesson_completions_lesson_student" json:"lesson_id"`
	StudentID   uint      `gorm:"not null;uniqueIndex:idx_lesson_completions_lesson_student" json:"student_id"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}
