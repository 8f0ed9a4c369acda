package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-course-api/internal/models"
	"github.com/noah-isme/gema-course-api/internal/repository"
)

// CanManageCourse reports whether the actor may author and grade inside the course.
// Admins manage every course; teachers manage the courses they instruct or teach.
func CanManageCourse(course models.Course, actor ActivityActor) bool {
	switch normalizeRole(actor.Role) {
	case models.RoleAdmin:
		return true
	case models.RoleTeacher:
		return course.OwnedBy(actor.ID)
	default:
		return false
	}
}

// loadManagedCourse fetches the course and enforces management rights.
func loadManagedCourse(ctx context.Context, courses repository.CourseRepository, courseID uint, actor ActivityActor) (models.Course, error) {
	course, err := loadCourse(ctx, courses, courseID)
	if err != nil {
		return models.Course{}, err
	}
	if !CanManageCourse(course, actor) {
		return models.Course{}, ErrForbidden
	}
	return course, nil
}

func loadCourse(ctx context.Context, courses repository.CourseRepository, courseID uint) (models.Course, error) {
	course, err := courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}
