package models

import "time"

// Certificate records that a user completed a course. One per (user, course).
type Certificate struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_certificates_user_course" json:"user_id"`
	CourseID      uint      `gorm:"not null;uniqueIndex:idx_certificates_user_course" json:"course_id"`
	CertificateNo string    `gorm:"size:64;uniqueIndex;not null" json:"certificate_no"`
	IssuedAt      time.Time `gorm:"not null" json:"issued_at"`
	CreatedAt     time.Time `json:"created_at"`
	Course        Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
