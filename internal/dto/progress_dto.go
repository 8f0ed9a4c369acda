package dto

import (
	"time"

	"github.com/noah-isme/gema-course-api/internal/models"
)

// RecalculateRequest asks for a forced resync of one course.
type RecalculateRequest struct {
	CourseID uint `json:"course_id" validate:"required,gt=0"`
}

// ProgressResponse exposes a ledger row together with both percent formulas.
type ProgressResponse struct {
	StudentID        uint      `json:"student_id"`
	CourseID         uint      `json:"course_id"`
	CompletedTasks   int       `json:"completed_tasks"`
	TotalTasks       int       `json:"total_tasks"`
	CompletedLessons int       `json:"completed_lessons"`
	TotalLessons     int       `json:"total_lessons"`
	QuizScore        *int      `json:"quiz_score"`
	Percent          int       `json:"percent"`
	TaskPercent      int       `json:"task_percent"`
	HasCertificate   bool      `json:"has_certificate"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RecalculateResponse reports the resynced row and whether a certificate was created.
type RecalculateResponse struct {
	Progress          ProgressResponse `json:"progress"`
	CertificateIssued bool             `json:"certificate_issued"`
}

// ProgressOverviewResponse summarises every course a student is enrolled in.
type ProgressOverviewResponse struct {
	Courses    []ProgressResponse `json:"courses"`
	Completed  int                `json:"completed"`
	InProgress int                `json:"in_progress"`
}

// NewProgressResponse converts a ledger row into a DTO.
func NewProgressResponse(model models.Progress) ProgressResponse {
	return ProgressResponse{
		StudentID:        model.StudentID,
		CourseID:         model.CourseID,
		CompletedTasks:   model.CompletedTasks,
		TotalTasks:       model.TotalTasks,
		CompletedLessons: model.CompletedLessons,
		TotalLessons:     model.TotalLessons,
		QuizScore:        model.QuizScore,
		Percent:          models.CombinedPercent(model),
		TaskPercent:      models.TaskOnlyPercent(model),
		UpdatedAt:        model.UpdatedAt,
	}
}
