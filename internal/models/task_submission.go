package models

import "time"

// SubmissionStatus is the grading state of a task submission.
type SubmissionStatus string

const (
	SubmissionStatusPending SubmissionStatus = "pending"
	SubmissionStatusPass    SubmissionStatus = "pass"
	SubmissionStatusFail    SubmissionStatus = "fail"
)

// TaskSubmission is a student's answer to a task. A student owns at most one per task.
type TaskSubmission struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	TaskID      uint             `gorm:"not null;uniqueIndex:idx_task_submissions_task_student" json:"task_id"`
	StudentID   uint             `gorm:"not null;uniqueIndex:idx_task_submissions_task_student;index" json:"student_id"`
	Answer      string           `gorm:"type:text;not null" json:"answer"`
	Status      SubmissionStatus `gorm:"size:16;not null;default:pending" json:"status"`
	Comment     string           `gorm:"type:text" json:"comment"`
	IsViewed    bool             `gorm:"not null;default:false" json:"is_viewed"`
	SubmittedAt time.Time        `gorm:"not null" json:"submitted_at"`
	GradedBy    *uint            `json:"graded_by"`
	GradedAt    *time.Time       `json:"graded_at"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Task        Task             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsPassed reports whether the submission reached the terminal pass state.
func (s TaskSubmission) IsPassed() bool {
	return s.Status == SubmissionStatusPass
}
