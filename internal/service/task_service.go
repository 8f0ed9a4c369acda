package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-course-api/internal/dto"
	"github.com/noah-isme/gema-course-api/internal/models"
	"github.com/noah-isme/gema-course-api/internal/observability"
	"github.com/noah-isme/gema-course-api/internal/repository"
)

// FileUploader abstracts uploading binary data and returning a URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// TaskService implements task authoring, submission and grading.
type TaskService interface {
	Create(ctx context.Context, actor ActivityActor, payload dto.TaskCreateRequest, file *multipart.FileHeader) (dto.TaskResponse, error)
	Delete(ctx context.Context, actor ActivityActor, taskID uint) error
	Submit(ctx context.Context, studentID uint, payload dto.TaskSubmitRequest) (dto.TaskSubmissionResponse, error)
	Grade(ctx context.Context, actor ActivityActor, payload dto.TaskGradeRequest) (dto.GradeResponse, error)
	ListForStudent(ctx context.Context, studentID, courseID uint) (dto.StudentTaskListResponse, error)
	ListForCourse(ctx context.Context, actor ActivityActor, courseID uint) ([]dto.ManagedTaskResponse, error)
	MarkViewed(ctx context.Context, studentID, taskID uint) error
	UnviewedCount(ctx context.Context, studentID uint) (int64, error)
}

type taskService struct {
	tasks       repository.TaskRepository
	submissions repository.TaskSubmissionRepository
	courses     repository.CourseRepository
	ledger      ProgressLedger
	issuer      CertificateIssuer
	activity    ActivityRecorder
	notifier    Notifier
	uploader    FileUploader
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// TaskServiceDeps groups the collaborators of the task service.
type TaskServiceDeps struct {
	Tasks       repository.TaskRepository
	Submissions repository.TaskSubmissionRepository
	Courses     repository.CourseRepository
	Ledger      ProgressLedger
	Issuer      CertificateIssuer
	Activity    ActivityRecorder
	Notifier    Notifier
	Uploader    FileUploader
	Validator   *validator.Validate
}

// NewTaskService builds the task grading pipeline. Activity, notifier and
// uploader are optional.
func NewTaskService(deps TaskServiceDeps, logger zerolog.Logger) TaskService {
	return &taskService{
		tasks:       deps.Tasks,
		submissions: deps.Submissions,
		courses:     deps.Courses,
		ledger:      deps.Ledger,
		issuer:      deps.Issuer,
		activity:    deps.Activity,
		notifier:    deps.Notifier,
		uploader:    deps.Uploader,
		validator:   deps.Validator,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "task_service").Logger(),
		now:         time.Now,
	}
}

// gradeSynonyms maps accepted grading verdicts onto submission states.
var gradeSynonyms = map[string]models.SubmissionStatus{
	"pass":           models.SubmissionStatusPass,
	"passed":         models.SubmissionStatusPass,
	"approved":       models.SubmissionStatusPass,
	"verified":       models.SubmissionStatusPass,
	"accepted":       models.SubmissionStatusPass,
	"fail":           models.SubmissionStatusFail,
	"failed":         models.SubmissionStatusFail,
	"rejected":       models.SubmissionStatusFail,
	"revision":       models.SubmissionStatusFail,
	"needs_revision": models.SubmissionStatusFail,
}

// NormalizeGradeStatus resolves a raw verdict, ignoring case and surrounding space.
func NormalizeGradeStatus(raw string) (models.SubmissionStatus, error) {
	status, ok := gradeSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func (s *taskService) Create(ctx context.Context, actor ActivityActor, payload dto.TaskCreateRequest, file *multipart.FileHeader) (dto.TaskResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}

	deadline, err := time.Parse(time.RFC3339, payload.Deadline)
	if err != nil {
		return dto.TaskResponse{}, ErrInvalidDeadline
	}

	if _, err := loadManagedCourse(ctx, s.courses, payload.CourseID, actor); err != nil {
		return dto.TaskResponse{}, err
	}

	task := models.Task{
		CourseID:    payload.CourseID,
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		Deadline:    deadline.UTC(),
		CreatedBy:   actor.ID,
	}

	if file != nil {
		url, err := s.uploadAttachment(ctx, file)
		if err != nil {
			return dto.TaskResponse{}, err
		}
		task.FileURL = url
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	if err := s.ledger.AdjustTotalTasks(ctx, task.CourseID, 1); err != nil {
		return dto.TaskResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "task.created",
		EntityType: "task",
		EntityID:   &task.ID,
		Metadata: map[string]interface{}{
			"course_id": task.CourseID,
			"title":     task.Title,
		},
	})

	s.logger.Info().Uint("task_id", task.ID).Uint("course_id", task.CourseID).Msg("task created")

	return dto.NewTaskResponse(task), nil
}

func (s *taskService) Delete(ctx context.Context, actor ActivityActor, taskID uint) error {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return err
	}

	if _, err := loadManagedCourse(ctx, s.courses, task.CourseID, actor); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	if err := s.ledger.AdjustTotalTasks(ctx, task.CourseID, -1); err != nil {
		return err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "task.deleted",
		EntityType: "task",
		EntityID:   &task.ID,
		Metadata:   map[string]interface{}{"course_id": task.CourseID},
	})

	s.logger.Info().Uint("task_id", task.ID).Uint("course_id", task.CourseID).Msg("task deleted")
	return nil
}

func (s *taskService) Submit(ctx context.Context, studentID uint, payload dto.TaskSubmitRequest) (dto.TaskSubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskSubmissionResponse{}, err
	}

	answer := strings.TrimSpace(payload.Answer)
	if answer == "" {
		return dto.TaskSubmissionResponse{}, ErrAnswerRequired
	}

	task, err := s.loadTask(ctx, payload.TaskID)
	if err != nil {
		return dto.TaskSubmissionResponse{}, err
	}

	existing, err := s.submissions.GetByTaskAndStudent(ctx, task.ID, studentID)
	switch {
	case err == nil && existing.IsPassed():
		return dto.TaskSubmissionResponse{}, ErrAlreadyPassed
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return dto.TaskSubmissionResponse{}, err
	}

	submission := models.TaskSubmission{
		TaskID:      task.ID,
		StudentID:   studentID,
		Answer:      answer,
		Status:      models.SubmissionStatusPending,
		IsViewed:    false,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.submissions.Upsert(ctx, &submission); err != nil {
		return dto.TaskSubmissionResponse{}, err
	}
	// A concurrent grade may have passed the submission between the check and the write.
	if submission.IsPassed() {
		return dto.TaskSubmissionResponse{}, ErrAlreadyPassed
	}

	s.logger.Info().
		Uint("task_id", task.ID).
		Uint("student_id", studentID).
		Msg("task submission stored")

	return dto.NewTaskSubmissionResponse(submission), nil
}

func (s *taskService) Grade(ctx context.Context, actor ActivityActor, payload dto.TaskGradeRequest) (dto.GradeResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-course-api/internal/service/task")
	ctx, span := tracer.Start(ctx, "grading.update")
	span.SetAttributes(
		attribute.Int64("grading.task_id", int64(payload.TaskID)),
		attribute.Int64("grading.submission_id", int64(payload.SubmissionID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	)
	defer span.End()

	fail := func(err error, reason string) (dto.GradeResponse, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		return dto.GradeResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return fail(err, "validation_failed")
	}

	status, err := NormalizeGradeStatus(payload.Status)
	if err != nil {
		return fail(err, "invalid_status")
	}

	task, err := s.loadTask(ctx, payload.TaskID)
	if err != nil {
		return fail(err, "task_lookup_failed")
	}

	course, err := loadManagedCourse(ctx, s.courses, task.CourseID, actor)
	if err != nil {
		return fail(err, "course_access_denied")
	}

	submission, err := s.submissions.GetByID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(ErrSubmissionNotFound, "submission_not_found")
		}
		return fail(err, "submission_lookup_failed")
	}
	if submission.TaskID != task.ID {
		return fail(ErrSubmissionNotFound, "submission_task_mismatch")
	}

	gradedAt := s.now().UTC()
	gradedBy := actor.ID
	submission.Status = status
	submission.Comment = strings.TrimSpace(s.sanitizer.Sanitize(payload.Comment))
	submission.IsViewed = false
	submission.GradedBy = &gradedBy
	submission.GradedAt = &gradedAt

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return fail(err, "submission_update_failed")
	}

	observability.SubmissionsGradedTotal().WithLabelValues(string(status)).Inc()

	progress, err := s.ledger.Recompute(ctx, submission.StudentID, course.ID)
	if err != nil {
		return fail(err, "progress_recompute_failed")
	}

	issued := issueQuietly(ctx, s.issuer, s.logger, progress, models.CombinedPercent)

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "task.graded",
		EntityType: "task_submission",
		EntityID:   &submission.ID,
		Metadata: map[string]interface{}{
			"task_id":    task.ID,
			"student_id": submission.StudentID,
			"status":     string(status),
		},
	})

	s.notifyGraded(ctx, task, submission)

	span.SetAttributes(
		attribute.String("grading.status", string(status)),
		attribute.Int("grading.percent", models.CombinedPercent(progress)),
		attribute.Bool("grading.certificate_issued", issued),
	)

	return dto.GradeResponse{
		Submission:        dto.NewTaskSubmissionResponse(submission),
		Progress:          progressView(ctx, s.issuer, s.logger, progress, issued),
		CertificateIssued: issued,
	}, nil
}

func (s *taskService) ListForStudent(ctx context.Context, studentID, courseID uint) (dto.StudentTaskListResponse, error) {
	if _, err := loadCourse(ctx, s.courses, courseID); err != nil {
		return dto.StudentTaskListResponse{}, err
	}

	tasks, err := s.tasks.ListByCourse(ctx, courseID)
	if err != nil {
		return dto.StudentTaskListResponse{}, err
	}

	taskIDs := make([]uint, 0, len(tasks))
	for _, task := range tasks {
		taskIDs = append(taskIDs, task.ID)
	}

	submissions, err := s.submissions.ListByStudentForTasks(ctx, studentID, taskIDs)
	if err != nil {
		return dto.StudentTaskListResponse{}, err
	}
	byTask := make(map[uint]models.TaskSubmission, len(submissions))
	for _, submission := range submissions {
		byTask[submission.TaskID] = submission
	}

	items := make([]dto.StudentTaskResponse, 0, len(tasks))
	for _, task := range tasks {
		item := dto.StudentTaskResponse{TaskResponse: dto.NewTaskResponse(task)}
		if submission, ok := byTask[task.ID]; ok {
			converted := dto.NewTaskSubmissionResponse(submission)
			item.Submission = &converted
		}
		items = append(items, item)
	}

	// Listing doubles as a self-heal: the ledger is resynced and a student who
	// has passed every task gets the certificate even if an earlier trigger failed.
	progress, err := s.ledger.Recompute(ctx, studentID, courseID)
	if err != nil {
		return dto.StudentTaskListResponse{}, err
	}
	percent := models.TaskOnlyPercent(progress)
	if percent == 100 {
		issueQuietly(ctx, s.issuer, s.logger, progress, models.TaskOnlyPercent)
	}

	return dto.StudentTaskListResponse{
		Tasks:          items,
		CompletedTasks: progress.CompletedTasks,
		TotalTasks:     progress.TotalTasks,
		Percent:        percent,
	}, nil
}

func (s *taskService) ListForCourse(ctx context.Context, actor ActivityActor, courseID uint) ([]dto.ManagedTaskResponse, error) {
	if _, err := loadManagedCourse(ctx, s.courses, courseID, actor); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByCourseWithSubmissions(ctx, courseID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ManagedTaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, dto.NewManagedTaskResponse(task))
	}
	return responses, nil
}

func (s *taskService) MarkViewed(ctx context.Context, studentID, taskID uint) error {
	if err := s.submissions.MarkViewed(ctx, taskID, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}
	return nil
}

func (s *taskService) UnviewedCount(ctx context.Context, studentID uint) (int64, error) {
	return s.submissions.CountUnviewed(ctx, studentID)
}

func (s *taskService) loadTask(ctx context.Context, taskID uint) (models.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

func (s *taskService) notifyGraded(ctx context.Context, task models.Task, submission models.TaskSubmission) {
	if s.notifier == nil {
		return
	}

	verdict := "passed"
	if submission.Status == models.SubmissionStatusFail {
		verdict = "returned for revision"
	}

	_, err := s.notifier.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  submission.StudentID,
		Type:    models.NotificationTypeTaskGraded,
		Message: fmt.Sprintf("Your submission for %q was %s.", task.Title, verdict),
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to publish grading notification")
	}
}

func (s *taskService) uploadAttachment(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if s.uploader == nil {
		return "", ErrAttachmentStorageUnavailable
	}

	if err := validateAttachmentType(file); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	url, err := s.uploader.Upload(ctx, file.Filename, src)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return url, nil
}

var allowedAttachmentTypes = []string{
	"application/pdf",
	"application/zip",
	"application/x-zip-compressed",
	"text/plain",
	"image/png",
	"image/jpeg",
}

func validateAttachmentType(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	for _, allowed := range allowedAttachmentTypes {
		if mime.Is(allowed) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrInvalidAttachment, mime.String())
}
