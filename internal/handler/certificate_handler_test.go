package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-course-api/internal/dto"
	"github.com/noah-isme/gema-course-api/internal/handler"
	"github.com/noah-isme/gema-course-api/internal/models"
	"github.com/noah-isme/gema-course-api/internal/service"
)

type stubCertificateService struct{}

func (stubCertificateService) MaybeIssue(context.Context, models.Progress, models.PercentFormula) (bool, error) {
	return false, nil
}

func (stubCertificateService) HasCertificate(context.Context, uint, uint) (bool, error) {
	return false, nil
}

func (stubCertificateService) List(context.Context, uint) ([]dto.CertificateResponse, error) {
	return []dto.CertificateResponse{{ID: 1, CourseID: 2, CourseTitle: "Web", CertificateNo: "GEMA-20240301-ABCDEF12"}}, nil
}

func (stubCertificateService) Download(_ context.Context, id uint) (service.CertificateDocument, error) {
	if id != 1 {
		return service.CertificateDocument{}, service.ErrCertificateNotFound
	}
	return service.CertificateDocument{Filename: "certificate-GEMA-20240301-ABCDEF12.pdf", Content: []byte("%PDF-1.3")}, nil
}

func TestCertificateHandlerDownloadStreamsPDF(t *testing.T) {
	app := newAuthedApp(3, "teacher")
	handler.NewCertificateHandler(stubCertificateService{}, zerolog.Nop()).Register(app.Group("/api/v1/certificates"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/certificates/download/1", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	require.Contains(t, resp.Header.Get("Content-Disposition"), "certificate-GEMA-20240301-ABCDEF12.pdf")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.3", string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/certificates/download/2", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCertificateHandlerListIsForStudents(t *testing.T) {
	app := newAuthedApp(3, "student")
	handler.NewCertificateHandler(stubCertificateService{}, zerolog.Nop()).Register(app.Group("/api/v1/certificates"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/certificates", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(readEnvelope(t, resp).Data), `"course_title":"Web"`)

	anonymous := newAuthedApp(0, "")
	handler.NewCertificateHandler(stubCertificateService{}, zerolog.Nop()).Register(anonymous.Group("/api/v1/certificates"))
	resp, err = anonymous.Test(httptest.NewRequest(http.MethodGet, "/api/v1/certificates/download/1", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
