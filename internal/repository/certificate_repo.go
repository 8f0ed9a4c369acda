package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-course-api/internal/models"
)

// CertificateRepository persists issued course certificates.
type CertificateRepository interface {
	// CreateIfAbsent inserts the certificate unless the (user, course) pair
	// already holds one. It reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, certificate *models.Certificate) (bool, error)
	GetByID(ctx context.Context, id uint) (models.Certificate, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID uint) (models.Certificate, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Certificate, error)
	CountByUserAndCourse(ctx context.Context, userID, courseID uint) (int64, error)
}

type certificateRepository struct {
	db *gorm.DB
}

// NewCertificateRepository builds the certificate repository.
func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

func (r *certificateRepository) CreateIfAbsent(ctx context.Context, certificate *models.Certificate) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(certificate)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *certificateRepository) GetByID(ctx context.Context, id uint) (models.Certificate, error) {
	var certificate models.Certificate
	if err := r.db.WithContext(ctx).Preload("Course").First(&certificate, id).Error; err != nil {
		return models.Certificate{}, err
	}
	return certificate, nil
}

func (r *certificateRepository) GetByUserAndCourse(ctx context.Context, userID, courseID uint) (models.Certificate, error) {
	var certificate models.Certificate
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&certificate).Error; err != nil {
		return models.Certificate{}, err
	}
	return certificate, nil
}

func (r *certificateRepository) ListByUser(ctx context.Context, userID uint) ([]models.Certificate, error) {
	var certificates []models.Certificate
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&certificates).Error; err != nil {
		return nil, err
	}
	return certificates, nil
}

func (r *certificateRepository) CountByUserAndCourse(ctx context.Context, userID, courseID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Certificate{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&total).Error
	return total, err
}
