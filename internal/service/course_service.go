package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-course-api/internal/dto"
	"github.com/noah-isme/gema-course-api/internal/models"
	"github.com/noah-isme/gema-course-api/internal/repository"
)

// CourseService manages course records.
type CourseService interface {
	Create(ctx context.Context, actor ActivityActor, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Get(ctx context.Context, courseID uint) (dto.CourseResponse, error)
}

type courseService struct {
	courses   repository.CourseRepository
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(courses repository.CourseRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:   courses,
		activity:  activity,
		validator: validate,
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) Create(ctx context.Context, actor ActivityActor, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	role := normalizeRole(actor.Role)
	if role != models.RoleTeacher && role != models.RoleAdmin {
		return dto.CourseResponse{}, ErrForbidden
	}

	course := models.Course{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		TeacherID:   payload.TeacherID,
	}
	if role == models.RoleTeacher {
		instructor := actor.ID
		course.InstructorID = &instructor
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "course.created",
		EntityType: "course",
		EntityID:   &course.ID,
		Metadata:   map[string]interface{}{"title": course.Title},
	})

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Get(ctx context.Context, courseID uint) (dto.CourseResponse, error) {
	course, err := loadCourse(ctx, s.courses, courseID)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}
