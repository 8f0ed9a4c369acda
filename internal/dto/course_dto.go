package dto

import (
	"time"

	"github.com/noah-isme/gema-course-api/internal/models"
)

// CourseCreateRequest describes the payload for creating a course.
type CourseCreateRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	TeacherID   *uint  `json:"teacher_id" validate:"omitempty,gt=0"`
}

// CourseResponse is the serialized representation of a course.
type CourseResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	InstructorID *uint     `json:"instructor_id"`
	TeacherID    *uint     `json:"teacher_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:           model.ID,
		Title:        model.Title,
		Description:  model.Description,
		InstructorID: model.InstructorID,
		TeacherID:    model.TeacherID,
		CreatedAt:    model.CreatedAt,
	}
}

// LessonCreateRequest describes the payload for adding a lesson.
type LessonCreateRequest struct {
	CourseID uint   `json:"course_id" validate:"required,gt=0"`
	Title    string `json:"title" validate:"required,min=3,max=255"`
	Position int    `json:"position" validate:"gte=0"`
}

// LessonResponse is the serialized representation of a lesson.
type LessonResponse struct {
	ID       uint   `json:"id"`
	CourseID uint   `json:"course_id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

// LessonCompleteResponse reports the progress after a lesson completion.
type LessonCompleteResponse struct {
	Progress          ProgressResponse `json:"progress"`
	CertificateIssued bool             `json:"certificate_issued"`
}

// NewLessonResponse converts a model into a DTO.
func NewLessonResponse(model models.Lesson) LessonResponse {
	return LessonResponse{
		ID:       model.ID,
		CourseID: model.CourseID,
		Title:    model.Title,
		Position: model.Position,
	}
}
