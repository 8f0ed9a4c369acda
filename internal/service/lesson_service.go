package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-course-api/internal/dto"
	"github.com/noah-isme/gema-course-api/internal/models"
	"github.com/noah-isme/gema-course-api/internal/repository"
)

// LessonService maintains the lesson dimension of the progress ledger.
type LessonService interface {
	Create(ctx context.Context, actor ActivityActor, payload dto.LessonCreateRequest) (dto.LessonResponse, error)
	Complete(ctx context.Context, studentID, lessonID uint) (dto.LessonCompleteResponse, error)
}

type lessonService struct {
	lessons   repository.LessonRepository
	courses   repository.CourseRepository
	ledger    ProgressLedger
	issuer    CertificateIssuer
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewLessonService constructs the lesson service.
func NewLessonService(
	lessons repository.LessonRepository,
	courses repository.CourseRepository,
	ledger ProgressLedger,
	issuer CertificateIssuer,
	activity ActivityRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) LessonService {
	return &lessonService{
		lessons:   lessons,
		courses:   courses,
		ledger:    ledger,
		issuer:    issuer,
		activity:  activity,
		validator: validate,
		logger:    logger.With().Str("component", "lesson_service").Logger(),
		now:       time.Now,
	}
}

func (s *lessonService) Create(ctx context.Context, actor ActivityActor, payload dto.LessonCreateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	if _, err := loadManagedCourse(ctx, s.courses, payload.CourseID, actor); err != nil {
		return dto.LessonResponse{}, err
	}

	lesson := models.Lesson{
		CourseID: payload.CourseID,
		Title:    strings.TrimSpace(payload.Title),
		Position: payload.Position,
	}
	if err := s.lessons.Create(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}

	if err := s.ledger.AdjustTotalLessons(ctx, lesson.CourseID, 1); err != nil {
		return dto.LessonResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "lesson.created",
		EntityType: "lesson",
		EntityID:   &lesson.ID,
		Metadata:   map[string]interface{}{"course_id": lesson.CourseID},
	})

	return dto.NewLessonResponse(lesson), nil
}

func (s *lessonService) Complete(ctx context.Context, studentID, lessonID uint) (dto.LessonCompleteResponse, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonCompleteResponse{}, ErrLessonNotFound
		}
		return dto.LessonCompleteResponse{}, err
	}

	completion := models.LessonCompletion{
		LessonID:    lesson.ID,
		StudentID:   studentID,
		CourseID:    lesson.CourseID,
		CompletedAt: s.now().UTC(),
	}
	if err := s.lessons.MarkCompleted(ctx, &completion); err != nil {
		return dto.LessonCompleteResponse{}, err
	}

	if _, err := s.ledger.Recompute(ctx, studentID, lesson.CourseID); err != nil {
		return dto.LessonCompleteResponse{}, err
	}

	progress, err := s.ledger.SyncLessons(ctx, studentID, lesson.CourseID)
	if err != nil {
		return dto.LessonCompleteResponse{}, err
	}

	issued := issueQuietly(ctx, s.issuer, s.logger, progress, models.CombinedPercent)

	return dto.LessonCompleteResponse{
		Progress:          progressView(ctx, s.issuer, s.logger, progress, issued),
		CertificateIssued: issued,
	}, nil
}
