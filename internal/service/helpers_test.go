package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-course-api/internal/database"
	"github.com/noah-isme/gema-course-api/internal/dto"
	"github.com/noah-isme/gema-course-api/internal/models"
	"github.com/noah-isme/gema-course-api/internal/repository"
	"github.com/noah-isme/gema-course-api/pkg/certpdf"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func ptrUint(v uint) *uint {
	return &v
}

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type recordingNotifier struct {
	mu       sync.Mutex
	payloads []dto.NotificationCreateRequest
}

func (n *recordingNotifier) Publish(_ context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, payload)
	return dto.NotificationResponse{UserID: payload.UserID, Type: payload.Type, Message: payload.Message}, nil
}

func (n *recordingNotifier) countType(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, payload := range n.payloads {
		if payload.Type == kind {
			total++
		}
	}
	return total
}

// courseEnv wires the real repositories and services on a private sqlite database.
type courseEnv struct {
	db           *gorm.DB
	notifier     *recordingNotifier
	activity     ActivityService
	certificates CertificateService
	ledger       ProgressLedger
	tasks        TaskService
	quizzes      QuizService
	lessons      LessonService
	courses      CourseService

	teacher ActivityActor
	course  models.Course
}

func newCourseEnv(t *testing.T) *courseEnv {
	t.Helper()

	db := setupServiceTestDB(t)
	logger := testLogger()
	validate := validator.New(validator.WithRequiredStructEnabled())
	notifier := &recordingNotifier{}

	courseRepo := repository.NewCourseRepository(db)
	activity := NewActivityService(repository.NewActivityLogRepository(db), logger)
	certificates := NewCertificateService(
		repository.NewCertificateRepository(db),
		courseRepo,
		repository.NewUserRepository(db),
		certpdf.NewRenderer("GEMA Academy"),
		notifier,
		logger,
	)
	ledger := NewProgressLedger(
		repository.NewProgressRepository(db),
		repository.NewTaskRepository(db),
		repository.NewLessonRepository(db),
		courseRepo,
		certificates,
		nil,
		time.Minute,
		logger,
	)
	tasks := NewTaskService(TaskServiceDeps{
		Tasks:       repository.NewTaskRepository(db),
		Submissions: repository.NewTaskSubmissionRepository(db),
		Courses:     courseRepo,
		Ledger:      ledger,
		Issuer:      certificates,
		Activity:    activity,
		Notifier:    notifier,
		Validator:   validate,
	}, logger)
	quizzes := NewQuizService(repository.NewQuizRepository(db), courseRepo, ledger, certificates, activity, validate, logger)
	lessons := NewLessonService(repository.NewLessonRepository(db), courseRepo, ledger, certificates, activity, validate, logger)
	courses := NewCourseService(courseRepo, activity, validate, logger)

	teacher := models.User{Name: "Teacher", Email: "teacher@example.com", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&teacher).Error)

	course := models.Course{Title: "Web Fundamentals", InstructorID: &teacher.ID}
	require.NoError(t, db.Create(&course).Error)

	return &courseEnv{
		db:           db,
		notifier:     notifier,
		activity:     activity,
		certificates: certificates,
		ledger:       ledger,
		tasks:        tasks,
		quizzes:      quizzes,
		lessons:      lessons,
		courses:      courses,
		teacher:      ActivityActor{ID: teacher.ID, Role: models.RoleTeacher},
		course:       course,
	}
}

func (e *courseEnv) student(t *testing.T, name string) uint {
	t.Helper()
	user := models.User{Name: name, Email: strings.ToLower(name) + "@example.com", Role: models.RoleStudent}
	require.NoError(t, e.db.Create(&user).Error)
	return user.ID
}

func (e *courseEnv) enroll(t *testing.T, studentID uint) {
	t.Helper()
	_, err := e.ledger.Enroll(context.Background(), studentID, e.course.ID)
	require.NoError(t, err)
}

func (e *courseEnv) createTask(t *testing.T, title string) dto.TaskResponse {
	t.Helper()
	task, err := e.tasks.Create(context.Background(), e.teacher, dto.TaskCreateRequest{
		CourseID: e.course.ID,
		Title:    title,
		Deadline: "2030-01-01T00:00:00Z",
	}, nil)
	require.NoError(t, err)
	return task
}

func (e *courseEnv) submit(t *testing.T, studentID, taskID uint) dto.TaskSubmissionResponse {
	t.Helper()
	submission, err := e.tasks.Submit(context.Background(), studentID, dto.TaskSubmitRequest{TaskID: taskID, Answer: "https://github.com/student/solution"})
	require.NoError(t, err)
	return submission
}

func (e *courseEnv) grade(t *testing.T, taskID, submissionID uint, status string) dto.GradeResponse {
	t.Helper()
	result, err := e.tasks.Grade(context.Background(), e.teacher, dto.TaskGradeRequest{
		TaskID:       taskID,
		SubmissionID: submissionID,
		Status:       status,
	})
	require.NoError(t, err)
	return result
}

func (e *courseEnv) progress(t *testing.T, studentID uint) models.Progress {
	t.Helper()
	var row models.Progress
	require.NoError(t, e.db.Where("student_id = ? AND course_id = ?", studentID, e.course.ID).First(&row).Error)
	return row
}

func (e *courseEnv) certificateCount(t *testing.T, studentID uint) int64 {
	t.Helper()
	var total int64
	require.NoError(t, e.db.Model(&models.Certificate{}).
		Where("user_id = ? AND course_id = ?", studentID, e.course.ID).
		Count(&total).Error)
	return total
}
