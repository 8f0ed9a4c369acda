package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-course-api/internal/dto"
	"github.com/noah-isme/gema-course-api/internal/handler"
	"github.com/noah-isme/gema-course-api/internal/models"
	"github.com/noah-isme/gema-course-api/internal/service"
)

type stubLedger struct {
	service.ProgressLedger
	overview dto.ProgressOverviewResponse
	getErr   error
	recalled uint
}

func (s *stubLedger) Recalculate(_ context.Context, studentID, courseID uint) (dto.RecalculateResponse, error) {
	s.recalled = courseID
	return dto.RecalculateResponse{Progress: dto.NewProgressResponse(models.Progress{StudentID: studentID, CourseID: courseID})}, nil
}

func (s *stubLedger) Get(_ context.Context, studentID, courseID uint) (dto.ProgressResponse, error) {
	if s.getErr != nil {
		return dto.ProgressResponse{}, s.getErr
	}
	return dto.NewProgressResponse(models.Progress{StudentID: studentID, CourseID: courseID, TotalTasks: 2, CompletedTasks: 1}), nil
}

func (s *stubLedger) List(context.Context, uint) (dto.ProgressOverviewResponse, error) {
	return s.overview, nil
}

func TestProgressHandlerListIncludesSummaryMeta(t *testing.T) {
	ledger := &stubLedger{overview: dto.ProgressOverviewResponse{
		Courses:    []dto.ProgressResponse{dto.NewProgressResponse(models.Progress{StudentID: 7, CourseID: 1})},
		Completed:  1,
		InProgress: 0,
	}}
	app := newAuthedApp(7, "student")
	handler.NewProgressHandler(ledger, zerolog.Nop()).Register(app.Group("/api/v1/progress"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/progress", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := readEnvelope(t, resp)
	require.JSONEq(t, `{"completed":1,"in_progress":0}`, string(payload.Meta))
}

func TestProgressHandlerGet(t *testing.T) {
	app := newAuthedApp(7, "student")
	handler.NewProgressHandler(&stubLedger{}, zerolog.Nop()).Register(app.Group("/api/v1/progress"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/progress/3", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	payload := readEnvelope(t, resp)
	require.Contains(t, string(payload.Data), `"percent":50`)

	missing := newAuthedApp(7, "student")
	handler.NewProgressHandler(&stubLedger{getErr: service.ErrProgressNotFound}, zerolog.Nop()).Register(missing.Group("/api/v1/progress"))
	resp, err = missing.Test(httptest.NewRequest(http.MethodGet, "/api/v1/progress/3", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	broken := newAuthedApp(7, "student")
	handler.NewProgressHandler(&stubLedger{getErr: errors.New("db down")}, zerolog.Nop()).Register(broken.Group("/api/v1/progress"))
	resp, err = broken.Test(httptest.NewRequest(http.MethodGet, "/api/v1/progress/3", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "internal server error", readEnvelope(t, resp).Message)
}

func TestProgressHandlerRecalculate(t *testing.T) {
	ledger := &stubLedger{}
	app := newAuthedApp(7, "student")
	handler.NewProgressHandler(ledger, zerolog.Nop()).Register(app.Group("/api/v1/progress"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/progress/recalculate", strings.NewReader(`{"course_id":4}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, uint(4), ledger.recalled)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/progress/recalculate", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
