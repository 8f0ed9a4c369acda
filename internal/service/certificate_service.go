package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-course-api/internal/dto"
	"github.com/noah-isme/gema-course-api/internal/models"
	"github.com/noah-isme/gema-course-api/internal/observability"
	"github.com/noah-isme/gema-course-api/internal/repository"
	"github.com/noah-isme/gema-course-api/pkg/certpdf"
)

// CertificateIssuer creates a certificate once a progress row reaches 100%.
type CertificateIssuer interface {
	// MaybeIssue reports whether a new certificate was created. A pair that
	// already holds a certificate is left untouched.
	MaybeIssue(ctx context.Context, progress models.Progress, formula models.PercentFormula) (bool, error)
	HasCertificate(ctx context.Context, userID, courseID uint) (bool, error)
}

// CertificateRenderer turns certificate fields into a printable document.
type CertificateRenderer interface {
	Render(cert certpdf.Certificate) ([]byte, error)
}

// CertificateDocument is a rendered certificate ready to be streamed.
type CertificateDocument struct {
	Filename string
	Content  []byte
}

// CertificateService issues, lists and renders course certificates.
type CertificateService interface {
	CertificateIssuer
	List(ctx context.Context, userID uint) ([]dto.CertificateResponse, error)
	Download(ctx context.Context, certificateID uint) (CertificateDocument, error)
}

type certificateService struct {
	certificates repository.CertificateRepository
	courses      repository.CourseRepository
	users        repository.UserRepository
	renderer     CertificateRenderer
	notifier     Notifier
	logger       zerolog.Logger
	now          func() time.Time
}

// NewCertificateService constructs the certificate issuer. The notifier is optional.
func NewCertificateService(
	certificates repository.CertificateRepository,
	courses repository.CourseRepository,
	users repository.UserRepository,
	renderer CertificateRenderer,
	notifier Notifier,
	logger zerolog.Logger,
) CertificateService {
	return &certificateService{
		certificates: certificates,
		courses:      courses,
		users:        users,
		renderer:     renderer,
		notifier:     notifier,
		logger:       logger.With().Str("component", "certificate_service").Logger(),
		now:          time.Now,
	}
}

func (s *certificateService) MaybeIssue(ctx context.Context, progress models.Progress, formula models.PercentFormula) (bool, error) {
	if formula == nil {
		formula = models.CombinedPercent
	}
	if formula(progress) != 100 {
		return false, nil
	}

	tracer := otel.Tracer("github.com/noah-isme/gema-course-api/internal/service/certificate")
	ctx, span := tracer.Start(ctx, "certificate.issue")
	span.SetAttributes(
		attribute.Int64("certificate.user_id", int64(progress.StudentID)),
		attribute.Int64("certificate.course_id", int64(progress.CourseID)),
	)
	defer span.End()

	issuedAt := s.now().UTC()
	certificate := models.Certificate{
		UserID:        progress.StudentID,
		CourseID:      progress.CourseID,
		CertificateNo: newCertificateNo(issuedAt),
		IssuedAt:      issuedAt,
	}

	created, err := s.certificates.CreateIfAbsent(ctx, &certificate)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "certificate_insert_failed")
		return false, fmt.Errorf("create certificate: %w", err)
	}
	span.SetAttributes(attribute.Bool("certificate.created", created))
	if !created {
		return false, nil
	}

	observability.CertificatesIssuedTotal().Inc()
	s.logger.Info().
		Uint("user_id", certificate.UserID).
		Uint("course_id", certificate.CourseID).
		Str("certificate_no", certificate.CertificateNo).
		Msg("certificate issued")

	s.notify(ctx, certificate)
	return true, nil
}

func (s *certificateService) List(ctx context.Context, userID uint) ([]dto.CertificateResponse, error) {
	certificates, err := s.certificates.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CertificateResponse, 0, len(certificates))
	for _, certificate := range certificates {
		responses = append(responses, dto.NewCertificateResponse(certificate))
	}
	return responses, nil
}

func (s *certificateService) Download(ctx context.Context, certificateID uint) (CertificateDocument, error) {
	certificate, err := s.certificates.GetByID(ctx, certificateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CertificateDocument{}, ErrCertificateNotFound
		}
		return CertificateDocument{}, err
	}

	studentName := fmt.Sprintf("Student #%d", certificate.UserID)
	user, err := s.users.GetByID(ctx, certificate.UserID)
	switch {
	case err == nil && strings.TrimSpace(user.Name) != "":
		studentName = user.Name
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return CertificateDocument{}, err
	}

	content, err := s.renderer.Render(certpdf.Certificate{
		StudentName:   studentName,
		CourseTitle:   certificate.Course.Title,
		CertificateNo: certificate.CertificateNo,
		IssuedAt:      certificate.IssuedAt,
	})
	if err != nil {
		s.logger.Error().Err(err).Uint("certificate_id", certificate.ID).Msg("failed to render certificate")
		return CertificateDocument{}, err
	}

	return CertificateDocument{
		Filename: fmt.Sprintf("certificate-%s.pdf", certificate.CertificateNo),
		Content:  content,
	}, nil
}

func (s *certificateService) notify(ctx context.Context, certificate models.Certificate) {
	if s.notifier == nil {
		return
	}

	title := fmt.Sprintf("course #%d", certificate.CourseID)
	if course, err := s.courses.GetByID(ctx, certificate.CourseID); err == nil && course.Title != "" {
		title = course.Title
	}

	_, err := s.notifier.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  certificate.UserID,
		Type:    models.NotificationTypeCertificateIssued,
		Message: fmt.Sprintf("Congratulations! You earned the certificate for %s.", title),
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", certificate.UserID).Msg("failed to publish certificate notification")
	}
}

// newCertificateNo returns a human readable identifier such as GEMA-20240301-1A2B3C4D.
func newCertificateNo(issuedAt time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("GEMA-%s-%s", issuedAt.Format("20060102"), suffix)
}

func (s *certificateService) HasCertificate(ctx context.Context, userID, courseID uint) (bool, error) {
	count, err := s.certificates.CountByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// issueQuietly runs the issuer and swallows its failure; callers never fail
// a user request because a certificate could not be written.
func issueQuietly(ctx context.Context, issuer CertificateIssuer, logger zerolog.Logger, progress models.Progress, formula models.PercentFormula) bool {
	if issuer == nil {
		return false
	}

	issued, err := issuer.MaybeIssue(ctx, progress, formula)
	if err != nil {
		logger.Error().Err(err).
			Uint("student_id", progress.StudentID).
			Uint("course_id", progress.CourseID).
			Msg("certificate issuance failed")
		return false
	}
	return issued
}
