package models

import "time"

// Course groups tasks, lessons and a quiz under one owner.
type Course struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	InstructorID *uint     `gorm:"index" json:"instructor_id"`
	TeacherID    *uint     `gorm:"index" json:"teacher_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OwnedBy reports whether the user is recorded as the course instructor or teacher.
func (c Course) OwnedBy(userID uint) bool {
	if userID == 0 {
		return false
	}
	if c.InstructorID != nil && *c.InstructorID == userID {
		return true
	}
	return c.TeacherID != nil && *c.TeacherID == userID
}
