package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-course-api/internal/models"
)

// TaskRepository defines persistence operations for course tasks.
type TaskRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.Task, error)
	ListByCourseWithSubmissions(ctx context.Context, courseID uint) ([]models.Task, error)
	GetByID(ctx context.Context, id uint) (models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uint) error
	CountByCourse(ctx context.Context, courseID uint) (int64, error)
	CountPassedByStudent(ctx context.Context, courseID, studentID uint) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository instantiates a GORM-backed repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("deadline ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) ListByCourseWithSubmissions(ctx context.Context, courseID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Preload("Submissions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("submitted_at DESC")
		}).
		Where("course_id = ?", courseID).
		Order("deadline ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskSubmission{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Task{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *taskRepository) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).Where("course_id = ?", courseID).Count(&total).Error
	return total, err
}

func (r *taskRepository) CountPassedByStudent(ctx context.Context, courseID, studentID uint) (int64, error) {
	var passed int64
	err := r.db.WithContext(ctx).
		Model(&models.TaskSubmission{}).
		Joins("JOIN tasks ON tasks.id = task_submissions.task_id").
		Where("tasks.course_id = ?", courseID).
		Where("task_submissions.student_id = ?", studentID).
		Where("task_submissions.status = ?", models.SubmissionStatusPass).
		Count(&passed).Error
	return passed, err
}
