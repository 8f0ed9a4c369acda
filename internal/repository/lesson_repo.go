package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-course-api/internal/models"
)

// LessonRepository persists lessons and their completions.
type LessonRepository interface {
	GetByID(ctx context.Context, id uint) (models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	CountByCourse(ctx context.Context, courseID uint) (int64, error)
	// MarkCompleted records the completion once; repeated calls are no-ops.
	MarkCompleted(ctx context.Context, completion *models.LessonCompletion) error
	CountCompleted(ctx context.Context, courseID, studentID uint) (int64, error)
}

type lessonRepository struct {
	db *gorm.DB
}

// NewLessonRepository instantiates a GORM-backed repository.
func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) GetByID(ctx context.Context, id uint) (models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return models.Lesson{}, err
	}
	return lesson, nil
}

func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *lessonRepository) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&total).Error
	return total, err
}

func (r *lessonRepository) MarkCompleted(ctx context.Context, completion *models.LessonCompletion) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "lesson_id"}, {Name: "student_id"}},
		DoNothing: true,
	}).Create(completion).Error
}

func (r *lessonRepository) CountCompleted(ctx context.Context, courseID, studentID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.LessonCompletion{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&total).Error
	return total, err
}
