package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-course-api/internal/models"
)

// TaskSubmissionRepository defines data operations for task submissions.
type TaskSubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.TaskSubmission, error)
	GetByTaskAndStudent(ctx context.Context, taskID, studentID uint) (models.TaskSubmission, error)
	ListByStudentForTasks(ctx context.Context, studentID uint, taskIDs []uint) ([]models.TaskSubmission, error)
	// Upsert inserts the submission or overwrites answer, status and timestamp of
	// the student's existing one for the same task. A passed submission is never
	// overwritten; the stored row is loaded back into submission either way.
	Upsert(ctx context.Context, submission *models.TaskSubmission) error
	Update(ctx context.Context, submission *models.TaskSubmission) error
	MarkViewed(ctx context.Context, taskID, studentID uint) error
	CountUnviewed(ctx context.Context, studentID uint) (int64, error)
}

type taskSubmissionRepository struct {
	db *gorm.DB
}

// NewTaskSubmissionRepository instantiates the repository.
func NewTaskSubmissionRepository(db *gorm.DB) TaskSubmissionRepository {
	return &taskSubmissionRepository{db: db}
}

func (r *taskSubmissionRepository) GetByID(ctx context.Context, id uint) (models.TaskSubmission, error) {
	var submission models.TaskSubmission
	if err := r.db.WithContext(ctx).Preload("Task").First(&submission, id).Error; err != nil {
		return models.TaskSubmission{}, err
	}

	return submission, nil
}

func (r *taskSubmissionRepository) GetByTaskAndStudent(ctx context.Context, taskID, studentID uint) (models.TaskSubmission, error) {
	var submission models.TaskSubmission
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND student_id = ?", taskID, studentID).
		First(&submission).Error; err != nil {
		return models.TaskSubmission{}, err
	}

	return submission, nil
}

func (r *taskSubmissionRepository) ListByStudentForTasks(ctx context.Context, studentID uint, taskIDs []uint) ([]models.TaskSubmission, error) {
	if len(taskIDs) == 0 {
		return []models.TaskSubmission{}, nil
	}

	var submissions []models.TaskSubmission
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND task_id IN ?", studentID, taskIDs).
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *taskSubmissionRepository) Upsert(ctx context.Context, submission *models.TaskSubmission) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "task_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"answer", "status", "is_viewed", "submitted_at", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Neq{Column: clause.Column{Table: "task_submissions", Name: "status"}, Value: models.SubmissionStatusPass},
		}},
	}).Omit(clause.Associations).Create(submission).Error; err != nil {
		return err
	}

	stored, err := r.GetByTaskAndStudent(ctx, submission.TaskID, submission.StudentID)
	if err != nil {
		return err
	}
	*submission = stored
	return nil
}

func (r *taskSubmissionRepository) Update(ctx context.Context, submission *models.TaskSubmission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(submission).Error
}

func (r *taskSubmissionRepository) MarkViewed(ctx context.Context, taskID, studentID uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.TaskSubmission{}).
		Where("task_id = ? AND student_id = ?", taskID, studentID).
		Updates(map[string]interface{}{"is_viewed": true, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *taskSubmissionRepository) CountUnviewed(ctx context.Context, studentID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.TaskSubmission{}).
		Where("student_id = ? AND is_viewed = ? AND status <> ?", studentID, false, models.SubmissionStatusPending).
		Count(&total).Error
	return total, err
}
