package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-course-api/internal/dto"
	"github.com/noah-isme/gema-course-api/internal/models"
	"github.com/noah-isme/gema-course-api/internal/repository"
)

// ProgressLedger keeps the per (student, course) completion counters in sync
// with tasks, lessons and quiz attempts.
type ProgressLedger interface {
	Recompute(ctx context.Context, studentID, courseID uint) (models.Progress, error)
	SyncLessons(ctx context.Context, studentID, courseID uint) (models.Progress, error)
	RecordQuizScore(ctx context.Context, studentID, courseID uint, score int) (models.Progress, error)
	AdjustTotalTasks(ctx context.Context, courseID uint, delta int) error
	AdjustTotalLessons(ctx context.Context, courseID uint, delta int) error
	Recalculate(ctx context.Context, studentID, courseID uint) (dto.RecalculateResponse, error)
	Enroll(ctx context.Context, studentID, courseID uint) (dto.ProgressResponse, error)
	Get(ctx context.Context, studentID, courseID uint) (dto.ProgressResponse, error)
	List(ctx context.Context, studentID uint) (dto.ProgressOverviewResponse, error)
}

type progressLedger struct {
	progress repository.ProgressRepository
	tasks    repository.TaskRepository
	lessons  repository.LessonRepository
	courses  repository.CourseRepository
	issuer   CertificateIssuer
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewProgressLedger constructs the ledger. The redis client is optional.
func NewProgressLedger(
	progress repository.ProgressRepository,
	tasks repository.TaskRepository,
	lessons repository.LessonRepository,
	courses repository.CourseRepository,
	issuer CertificateIssuer,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) ProgressLedger {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &progressLedger{
		progress: progress,
		tasks:    tasks,
		lessons:  lessons,
		courses:  courses,
		issuer:   issuer,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "progress_ledger").Logger(),
	}
}

func (s *progressLedger) Recompute(ctx context.Context, studentID, courseID uint) (models.Progress, error) {
	total, err := s.tasks.CountByCourse(ctx, courseID)
	if err != nil {
		return models.Progress{}, fmt.Errorf("count tasks: %w", err)
	}

	passed, err := s.tasks.CountPassedByStudent(ctx, courseID, studentID)
	if err != nil {
		return models.Progress{}, fmt.Errorf("count passed tasks: %w", err)
	}

	row, err := s.progress.UpsertTaskCounts(ctx, studentID, courseID, int(passed), int(total))
	if err != nil {
		return models.Progress{}, fmt.Errorf("store task counts: %w", err)
	}

	s.invalidate(ctx, studentID)
	return row, nil
}

func (s *progressLedger) SyncLessons(ctx context.Context, studentID, courseID uint) (models.Progress, error) {
	total, err := s.lessons.CountByCourse(ctx, courseID)
	if err != nil {
		return models.Progress{}, fmt.Errorf("count lessons: %w", err)
	}

	completed, err := s.lessons.CountCompleted(ctx, courseID, studentID)
	if err != nil {
		return models.Progress{}, fmt.Errorf("count completed lessons: %w", err)
	}

	row, err := s.progress.UpsertLessonCounts(ctx, studentID, courseID, int(completed), int(total))
	if err != nil {
		return models.Progress{}, fmt.Errorf("store lesson counts: %w", err)
	}

	s.invalidate(ctx, studentID)
	return row, nil
}

func (s *progressLedger) RecordQuizScore(ctx context.Context, studentID, courseID uint, score int) (models.Progress, error) {
	row, err := s.progress.UpsertQuizScore(ctx, studentID, courseID, score)
	if err != nil {
		return models.Progress{}, fmt.Errorf("store quiz score: %w", err)
	}

	s.invalidate(ctx, studentID)
	return row, nil
}

func (s *progressLedger) AdjustTotalTasks(ctx context.Context, courseID uint, delta int) error {
	affected, err := s.progress.AdjustTotalTasks(ctx, courseID, delta)
	if err != nil {
		return fmt.Errorf("adjust total tasks: %w", err)
	}

	s.logger.Debug().Uint("course_id", courseID).Int("delta", delta).Int64("rows", affected).Msg("task totals adjusted")
	s.invalidateCourse(ctx, courseID)
	return nil
}

func (s *progressLedger) AdjustTotalLessons(ctx context.Context, courseID uint, delta int) error {
	affected, err := s.progress.AdjustTotalLessons(ctx, courseID, delta)
	if err != nil {
		return fmt.Errorf("adjust total lessons: %w", err)
	}

	s.logger.Debug().Uint("course_id", courseID).Int("delta", delta).Int64("rows", affected).Msg("lesson totals adjusted")
	s.invalidateCourse(ctx, courseID)
	return nil
}

func (s *progressLedger) Recalculate(ctx context.Context, studentID, courseID uint) (dto.RecalculateResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-course-api/internal/service/progress")
	ctx, span := tracer.Start(ctx, "progress.recalculate")
	span.SetAttributes(
		attribute.Int64("progress.student_id", int64(studentID)),
		attribute.Int64("progress.course_id", int64(courseID)),
	)
	defer span.End()

	if _, err := loadCourse(ctx, s.courses, courseID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "course_lookup_failed")
		return dto.RecalculateResponse{}, err
	}

	if _, err := s.Recompute(ctx, studentID, courseID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "task_sync_failed")
		return dto.RecalculateResponse{}, err
	}

	row, err := s.SyncLessons(ctx, studentID, courseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lesson_sync_failed")
		return dto.RecalculateResponse{}, err
	}

	issued := issueQuietly(ctx, s.issuer, s.logger, row, models.CombinedPercent)
	span.SetAttributes(
		attribute.Int("progress.percent", models.CombinedPercent(row)),
		attribute.Bool("progress.certificate_issued", issued),
	)

	return dto.RecalculateResponse{
		Progress:          progressView(ctx, s.issuer, s.logger, row, issued),
		CertificateIssued: issued,
	}, nil
}

func (s *progressLedger) Enroll(ctx context.Context, studentID, courseID uint) (dto.ProgressResponse, error) {
	if _, err := loadCourse(ctx, s.courses, courseID); err != nil {
		return dto.ProgressResponse{}, err
	}

	totalTasks, err := s.tasks.CountByCourse(ctx, courseID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}
	totalLessons, err := s.lessons.CountByCourse(ctx, courseID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	row := models.Progress{
		StudentID:    studentID,
		CourseID:     courseID,
		TotalTasks:   int(totalTasks),
		TotalLessons: int(totalLessons),
	}
	created, err := s.progress.Create(ctx, &row)
	if err != nil {
		return dto.ProgressResponse{}, err
	}
	if !created {
		return dto.ProgressResponse{}, ErrAlreadyEnrolled
	}

	s.invalidate(ctx, studentID)
	s.logger.Info().Uint("student_id", studentID).Uint("course_id", courseID).Msg("student enrolled")

	return progressView(ctx, s.issuer, s.logger, row, false), nil
}

func (s *progressLedger) Get(ctx context.Context, studentID, courseID uint) (dto.ProgressResponse, error) {
	row, err := s.progress.Get(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgressResponse{}, ErrProgressNotFound
		}
		return dto.ProgressResponse{}, err
	}
	return progressView(ctx, s.issuer, s.logger, row, false), nil
}

func (s *progressLedger) List(ctx context.Context, studentID uint) (dto.ProgressOverviewResponse, error) {
	cacheKey := progressCacheKey(studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.ProgressOverviewResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("progress cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read progress cache")
		}
	}

	rows, err := s.progress.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.ProgressOverviewResponse{}, err
	}

	response := dto.ProgressOverviewResponse{Courses: make([]dto.ProgressResponse, 0, len(rows))}
	for _, row := range rows {
		item := progressView(ctx, s.issuer, s.logger, row, false)
		if item.Percent == 100 {
			response.Completed++
		} else {
			response.InProgress++
		}
		response.Courses = append(response.Courses, item)
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store progress cache")
			}
		}
	}

	return response, nil
}

func (s *progressLedger) invalidate(ctx context.Context, studentIDs ...uint) {
	if s.cache == nil || len(studentIDs) == 0 {
		return
	}

	keys := make([]string, 0, len(studentIDs))
	for _, id := range studentIDs {
		keys = append(keys, progressCacheKey(id))
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate progress cache")
	}
}

func (s *progressLedger) invalidateCourse(ctx context.Context, courseID uint) {
	if s.cache == nil {
		return
	}

	ids, err := s.progress.ListStudentIDs(ctx, courseID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("course_id", courseID).Msg("failed to list enrolled students")
		return
	}
	s.invalidate(ctx, ids...)
}

func progressCacheKey(studentID uint) string {
	return fmt.Sprintf("progress:student:%d", studentID)
}

// progressView converts a ledger row and fills the certificate flag. A failed
// lookup is logged and reported as no certificate.
func progressView(ctx context.Context, issuer CertificateIssuer, logger zerolog.Logger, row models.Progress, issued bool) dto.ProgressResponse {
	view := dto.NewProgressResponse(row)
	if issued || issuer == nil {
		view.HasCertificate = issued
		return view
	}

	has, err := issuer.HasCertificate(ctx, row.StudentID, row.CourseID)
	if err != nil {
		logger.Warn().Err(err).
			Uint("student_id", row.StudentID).
			Uint("course_id", row.CourseID).
			Msg("failed to look up certificate")
		return view
	}
	view.HasCertificate = has
	return view
}
