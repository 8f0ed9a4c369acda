package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-course-api/internal/models"
)

// QuizRepository stores quiz questions and the single attempt per student.
type QuizRepository interface {
	ListQuestions(ctx context.Context, courseID uint) ([]models.QuizQuestion, error)
	AppendQuestions(ctx context.Context, courseID uint, questions []models.QuizQuestion) ([]models.QuizQuestion, error)
	GetAttempt(ctx context.Context, studentID, courseID uint) (models.QuizAttempt, error)
	SaveAttempt(ctx context.Context, attempt *models.QuizAttempt) error
}

type quizRepository struct {
	db *gorm.DB
}

// NewQuizRepository instantiates a GORM-backed repository.
func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) ListQuestions(ctx context.Context, courseID uint) ([]models.QuizQuestion, error) {
	var questions []models.QuizQuestion
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC, id ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// AppendQuestions numbers the new questions after the current last position.
func (r *quizRepository) AppendQuestions(ctx context.Context, courseID uint, questions []models.QuizQuestion) ([]models.QuizQuestion, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last struct{ Position *int }
		if err := tx.Model(&models.QuizQuestion{}).
			Select("MAX(position) AS position").
			Where("course_id = ?", courseID).
			Scan(&last).Error; err != nil {
			return err
		}

		next := 0
		if last.Position != nil {
			next = *last.Position + 1
		}
		for i := range questions {
			questions[i].CourseID = courseID
			questions[i].Position = next + i
		}

		return tx.Create(&questions).Error
	})
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *quizRepository) GetAttempt(ctx context.Context, studentID, courseID uint) (models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&attempt).Error; err != nil {
		return models.QuizAttempt{}, err
	}
	return attempt, nil
}

func (r *quizRepository) SaveAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"answers", "score", "submitted_at", "updated_at"}),
	}).Create(attempt).Error; err != nil {
		return err
	}

	stored, err := r.GetAttempt(ctx, attempt.StudentID, attempt.CourseID)
	if err != nil {
		return err
	}
	*attempt = stored
	return nil
}
