package dto

import (
	"time"

	"github.com/noah-isme/gema-course-api/internal/models"
)

// CertificateResponse is returned when listing certificates.
type CertificateResponse struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	CourseID      uint      `json:"course_id"`
	CourseTitle   string    `json:"course_title"`
	CertificateNo string    `json:"certificate_no"`
	IssuedAt      time.Time `json:"issued_at"`
}

// NewCertificateResponse converts a model into a DTO.
func NewCertificateResponse(model models.Certificate) CertificateResponse {
	return CertificateResponse{
		ID:            model.ID,
		UserID:        model.UserID,
		CourseID:      model.CourseID,
		CourseTitle:   model.Course.Title,
		CertificateNo: model.CertificateNo,
		IssuedAt:      model.IssuedAt,
	}
}
