package dto

import (
	"time"

	"github.com/noah-isme/gema-course-api/internal/models"
)

// TaskCreateRequest describes the multipart payload for creating a task.
type TaskCreateRequest struct {
	CourseID    uint   `form:"course_id" json:"course_id" validate:"required,gt=0"`
	Title       string `form:"title" json:"title" validate:"required,min=3,max=255"`
	Description string `form:"description" json:"description" validate:"omitempty,max=5000"`
	Deadline    string `form:"deadline" json:"deadline" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// TaskSubmitRequest carries a student's answer to a task.
type TaskSubmitRequest struct {
	TaskID uint   `json:"task_id" validate:"required,gt=0"`
	Answer string `json:"answer"`
}

// TaskGradeRequest carries a course manager's verdict on a submission.
type TaskGradeRequest struct {
	TaskID       uint   `json:"task_id" validate:"required,gt=0"`
	SubmissionID uint   `json:"submission_id" validate:"required,gt=0"`
	Status       string `json:"status" validate:"required"`
	Comment      string `json:"comment" validate:"omitempty,max=2000"`
}

// TaskResponse is the serialized representation of a task.
type TaskResponse struct {
	ID          uint      `json:"id"`
	CourseID    uint      `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
	FileURL     string    `json:"file_url"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskSubmissionResponse is the serialized representation of a submission.
type TaskSubmissionResponse struct {
	ID          uint       `json:"id"`
	TaskID      uint       `json:"task_id"`
	StudentID   uint       `json:"student_id"`
	Answer      string     `json:"answer"`
	Status      string     `json:"status"`
	Comment     string     `json:"comment"`
	IsViewed    bool       `json:"is_viewed"`
	SubmittedAt time.Time  `json:"submitted_at"`
	GradedBy    *uint      `json:"graded_by"`
	GradedAt    *time.Time `json:"graded_at"`
}

// StudentTaskResponse annotates a task with the caller's own submission.
type StudentTaskResponse struct {
	TaskResponse
	Submission *TaskSubmissionResponse `json:"submission"`
}

// StudentTaskListResponse is returned by the student task listing.
type StudentTaskListResponse struct {
	Tasks          []StudentTaskResponse `json:"tasks"`
	CompletedTasks int                   `json:"completed_tasks"`
	TotalTasks     int                   `json:"total_tasks"`
	Percent        int                   `json:"percent"`
}

// ManagedTaskResponse is a task with every student submission, for graders.
type ManagedTaskResponse struct {
	TaskResponse
	Submissions []TaskSubmissionResponse `json:"submissions"`
}

// GradeResponse reports the graded submission and the resulting progress.
type GradeResponse struct {
	Submission        TaskSubmissionResponse `json:"submission"`
	Progress          ProgressResponse       `json:"progress"`
	CertificateIssued bool                   `json:"certificate_issued"`
}

// NewTaskResponse converts a model into a DTO.
func NewTaskResponse(model models.Task) TaskResponse {
	return TaskResponse{
		ID:          model.ID,
		CourseID:    model.CourseID,
		Title:       model.Title,
		Description: model.Description,
		Deadline:    model.Deadline,
		FileURL:     model.FileURL,
		CreatedBy:   model.CreatedBy,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewTaskSubmissionResponse converts a submission model into a DTO.
func NewTaskSubmissionResponse(model models.TaskSubmission) TaskSubmissionResponse {
	return TaskSubmissionResponse{
		ID:          model.ID,
		TaskID:      model.TaskID,
		StudentID:   model.StudentID,
		Answer:      model.Answer,
		Status:      string(model.Status),
		Comment:     model.Comment,
		IsViewed:    model.IsViewed,
		SubmittedAt: model.SubmittedAt,
		GradedBy:    model.GradedBy,
		GradedAt:    model.GradedAt,
	}
}

// NewManagedTaskResponse converts a task with preloaded submissions.
func NewManagedTaskResponse(model models.Task) ManagedTaskResponse {
	submissions := make([]TaskSubmissionResponse, 0, len(model.Submissions))
	for _, submission := range model.Submissions {
		submissions = append(submissions, NewTaskSubmissionResponse(submission))
	}

	return ManagedTaskResponse{
		TaskResponse: NewTaskResponse(model),
		Submissions:  submissions,
	}
}
