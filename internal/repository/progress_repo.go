package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-course-api/internal/models"
)

// ProgressRepository persists the per (student, course) completion ledger.
type ProgressRepository interface {
	Get(ctx context.Context, studentID, courseID uint) (models.Progress, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Progress, error)
	ListStudentIDs(ctx context.Context, courseID uint) ([]uint, error)
	// Create inserts a fresh row and reports false when one already exists.
	Create(ctx context.Context, progress *models.Progress) (bool, error)
	UpsertTaskCounts(ctx context.Context, studentID, courseID uint, completed, total int) (models.Progress, error)
	UpsertLessonCounts(ctx context.Context, studentID, courseID uint, completed, total int) (models.Progress, error)
	UpsertQuizScore(ctx context.Context, studentID, courseID uint, score int) (models.Progress, error)
	AdjustTotalTasks(ctx context.Context, courseID uint, delta int) (int64, error)
	AdjustTotalLessons(ctx context.Context, courseID uint, delta int) (int64, error)
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository instantiates a GORM-backed progress ledger.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

var progressConflictColumns = []clause.Column{{Name: "student_id"}, {Name: "course_id"}}

func (r *progressRepository) Get(ctx context.Context, studentID, courseID uint) (models.Progress, error) {
	var progress models.Progress
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&progress).Error; err != nil {
		return models.Progress{}, err
	}

	return progress, nil
}

func (r *progressRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Progress, error) {
	var rows []models.Progress
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("course_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *progressRepository) ListStudentIDs(ctx context.Context, courseID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Progress{}).
		Where("course_id = ?", courseID).
		Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *progressRepository) Create(ctx context.Context, progress *models.Progress) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: progressConflictColumns, DoNothing: true}).
		Create(progress)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *progressRepository) UpsertTaskCounts(ctx context.Context, studentID, courseID uint, completed, total int) (models.Progress, error) {
	row := models.Progress{
		StudentID:      studentID,
		CourseID:       courseID,
		CompletedTasks: completed,
		TotalTasks:     total,
	}
	return r.upsert(ctx, row, []string{"completed_tasks", "total_tasks"})
}

func (r *progressRepository) UpsertLessonCounts(ctx context.Context, studentID, courseID uint, completed, total int) (models.Progress, error) {
	row := models.Progress{
		StudentID:        studentID,
		CourseID:         courseID,
		CompletedLessons: completed,
		TotalLessons:     total,
	}
	return r.upsert(ctx, row, []string{"completed_lessons", "total_lessons"})
}

func (r *progressRepository) UpsertQuizScore(ctx context.Context, studentID, courseID uint, score int) (models.Progress, error) {
	row := models.Progress{
		StudentID: studentID,
		CourseID:  courseID,
		QuizScore: &score,
	}
	return r.upsert(ctx, row, []string{"quiz_score"})
}

// upsert inserts the row or updates only the listed columns, leaving the
// other dimensions of an existing row untouched.
func (r *progressRepository) upsert(ctx context.Context, row models.Progress, columns []string) (models.Progress, error) {
	now := time.Now()
	row.CreatedAt = now
	row.UpdatedAt = now

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   progressConflictColumns,
		DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
	}).Create(&row).Error; err != nil {
		return models.Progress{}, err
	}

	return r.Get(ctx, row.StudentID, row.CourseID)
}

func (r *progressRepository) AdjustTotalTasks(ctx context.Context, courseID uint, delta int) (int64, error) {
	return r.adjust(ctx, "total_tasks", courseID, delta)
}

func (r *progressRepository) AdjustTotalLessons(ctx context.Context, courseID uint, delta int) (int64, error) {
	return r.adjust(ctx, "total_lessons", courseID, delta)
}

// adjust shifts a total column on every row of the course in one statement.
// Rows that would go negative are left alone.
func (r *progressRepository) adjust(ctx context.Context, column string, courseID uint, delta int) (int64, error) {
	if delta == 0 {
		return 0, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Progress{}).Where("course_id = ?", courseID)
	if delta < 0 {
		query = query.Where(column+" >= ?", -delta)
	}

	result := query.Updates(map[string]interface{}{
		column:       gorm.Expr(column+" + ?", delta),
		"updated_at": time.Now(),
	})
	return result.RowsAffected, result.Error
}
