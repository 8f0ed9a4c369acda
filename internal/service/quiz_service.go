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

// QuizService gates the course quiz behind task completion and scores attempts.
type QuizService interface {
	Get(ctx context.Context, studentID, courseID uint) (dto.QuizStateResponse, error)
	Submit(ctx context.Context, studentID uint, payload dto.QuizSubmitRequest) (dto.QuizSubmitResponse, error)
	AddQuestions(ctx context.Context, actor ActivityActor, courseID uint, payload dto.QuizQuestionCreateRequest) ([]dto.QuizQuestionResponse, error)
}

type quizService struct {
	quizzes   repository.QuizRepository
	courses   repository.CourseRepository
	ledger    ProgressLedger
	issuer    CertificateIssuer
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewQuizService constructs the quiz gate.
func NewQuizService(
	quizzes repository.QuizRepository,
	courses repository.CourseRepository,
	ledger ProgressLedger,
	issuer CertificateIssuer,
	activity ActivityRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) QuizService {
	return &quizService{
		quizzes:   quizzes,
		courses:   courses,
		ledger:    ledger,
		issuer:    issuer,
		activity:  activity,
		validator: validate,
		logger:    logger.With().Str("component", "quiz_service").Logger(),
		now:       time.Now,
	}
}

func (s *quizService) Get(ctx context.Context, studentID, courseID uint) (dto.QuizStateResponse, error) {
	if _, err := loadCourse(ctx, s.courses, courseID); err != nil {
		return dto.QuizStateResponse{}, err
	}

	// The gate reads freshly counted tasks so a stale or missing ledger row
	// cannot unlock the quiz.
	progress, err := s.ledger.Recompute(ctx, studentID, courseID)
	if err != nil {
		return dto.QuizStateResponse{}, err
	}
	if !progress.TasksComplete() {
		return dto.QuizStateResponse{Locked: true, Percent: models.TaskOnlyPercent(progress)}, nil
	}

	questions, err := s.quizzes.ListQuestions(ctx, courseID)
	if err != nil {
		return dto.QuizStateResponse{}, err
	}

	attempt, found, err := s.loadAttempt(ctx, studentID, courseID)
	if err != nil {
		return dto.QuizStateResponse{}, err
	}

	state := dto.QuizStateResponse{Percent: models.TaskOnlyPercent(progress)}
	if found {
		answers := attempt.AnswerList()
		if len(answers) >= len(questions) {
			score := attempt.Score
			state.Attempted = true
			state.Score = &score
			return state, nil
		}
		state.PreviousAnswers = answers
	}

	state.Questions = dto.NewQuizQuestionResponseSlice(questions)
	return state, nil
}

func (s *quizService) Submit(ctx context.Context, studentID uint, payload dto.QuizSubmitRequest) (dto.QuizSubmitResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizSubmitResponse{}, err
	}

	if _, err := loadCourse(ctx, s.courses, payload.CourseID); err != nil {
		return dto.QuizSubmitResponse{}, err
	}

	progress, err := s.ledger.Recompute(ctx, studentID, payload.CourseID)
	if err != nil {
		return dto.QuizSubmitResponse{}, err
	}
	if !progress.TasksComplete() {
		return dto.QuizSubmitResponse{}, ErrQuizLocked
	}

	questions, err := s.quizzes.ListQuestions(ctx, payload.CourseID)
	if err != nil {
		return dto.QuizSubmitResponse{}, err
	}
	if len(payload.Answers) > len(questions) {
		return dto.QuizSubmitResponse{}, ErrInvalidAnswers
	}

	previous, found, err := s.loadAttempt(ctx, studentID, payload.CourseID)
	if err != nil {
		return dto.QuizSubmitResponse{}, err
	}
	if found && len(previous.AnswerList()) >= len(questions) {
		return dto.QuizSubmitResponse{}, ErrQuizAlreadySubmitted
	}

	score := ScoreQuiz(questions, payload.Answers)

	attempt := models.QuizAttempt{
		StudentID:   studentID,
		CourseID:    payload.CourseID,
		Score:       score,
		SubmittedAt: s.now().UTC(),
	}
	attempt.SetAnswers(payload.Answers)
	if err := s.quizzes.SaveAttempt(ctx, &attempt); err != nil {
		return dto.QuizSubmitResponse{}, err
	}

	updated, err := s.ledger.RecordQuizScore(ctx, studentID, payload.CourseID, score)
	if err != nil {
		return dto.QuizSubmitResponse{}, err
	}

	issued := issueQuietly(ctx, s.issuer, s.logger, updated, models.CombinedPercent)

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("course_id", payload.CourseID).
		Int("score", score).
		Int("questions", len(questions)).
		Msg("quiz attempt stored")

	return dto.QuizSubmitResponse{
		Score:             score,
		Total:             len(questions),
		CertificateIssued: issued,
	}, nil
}

func (s *quizService) AddQuestions(ctx context.Context, actor ActivityActor, courseID uint, payload dto.QuizQuestionCreateRequest) ([]dto.QuizQuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	if _, err := loadManagedCourse(ctx, s.courses, courseID, actor); err != nil {
		return nil, err
	}

	questions := make([]models.QuizQuestion, 0, len(payload.Questions))
	for _, input := range payload.Questions {
		if input.CorrectAnswer >= len(input.Options) {
			return nil, ErrInvalidQuestion
		}

		options := make([]string, 0, len(input.Options))
		for _, option := range input.Options {
			options = append(options, strings.TrimSpace(option))
		}

		question := models.QuizQuestion{
			CourseID:      courseID,
			Prompt:        strings.TrimSpace(input.Prompt),
			CorrectAnswer: input.CorrectAnswer,
		}
		question.SetOptions(options)
		questions = append(questions, question)
	}

	stored, err := s.quizzes.AppendQuestions(ctx, courseID, questions)
	if err != nil {
		return nil, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "quiz.questions_added",
		EntityType: "course",
		EntityID:   &courseID,
		Metadata:   map[string]interface{}{"count": len(stored)},
	})

	return dto.NewQuizQuestionResponseSlice(stored), nil
}

func (s *quizService) loadAttempt(ctx context.Context, studentID, courseID uint) (models.QuizAttempt, bool, error) {
	attempt, err := s.quizzes.GetAttempt(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.QuizAttempt{}, false, nil
		}
		return models.QuizAttempt{}, false, err
	}
	return attempt, true, nil
}

// ScoreQuiz counts positional matches between answers and the questions' correct options.
func ScoreQuiz(questions []models.QuizQuestion, answers []int) int {
	score := 0
	for i, answer := range answers {
		if i >= len(questions) {
			break
		}
		if answer == questions[i].CorrectAnswer {
			score++
		}
	}
	return score
}
