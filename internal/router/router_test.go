package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-course-api/internal/config"
	"github.com/noah-isme/gema-course-api/internal/handler"
	"github.com/noah-isme/gema-course-api/internal/router"
)

type healthEnvelope struct {
	Success bool                   `json:"success"`
	Data    handler.HealthResponse `json:"data"`
}

func newTestApp(jwt fiber.Handler) *fiber.App {
	cfg := config.Config{AppName: "GEMA Course API", AppEnv: "test", SubmitRateLimit: 2, SubmitRateWindow: time.Minute}
	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		TaskHandler:         handler.NewTaskHandler(nil, zerolog.Nop()),
		QuizHandler:         handler.NewQuizHandler(nil, zerolog.Nop()),
		ProgressHandler:     handler.NewProgressHandler(nil, zerolog.Nop()),
		CertificateHandler:  handler.NewCertificateHandler(nil, zerolog.Nop()),
		CourseHandler:       handler.NewCourseHandler(nil, nil, zerolog.Nop()),
		LessonHandler:       handler.NewLessonHandler(nil, zerolog.Nop()),
		NotificationHandler: handler.NewNotificationHandler(nil, zerolog.Nop(), time.Second),
		ActivityHandler:     handler.NewActivityHandler(nil, zerolog.Nop()),
		JWTMiddleware:       jwt,
	})
	return app
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "GEMA Course API", resp.Header.Get("X-Application"))

	var payload healthEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.True(t, payload.Success)
	assert.Equal(t, "ok", payload.Data.Status)
	assert.Equal(t, "test", payload.Data.Environment)
	assert.WithinDuration(t, time.Now().UTC(), payload.Data.Timestamp, 2*time.Second)
}

func TestProtectedGroupsRunJWTMiddleware(t *testing.T) {
	reject := func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	app := newTestApp(reject)

	for _, path := range []string{"/api/v1/tasks/unviewed", "/api/v1/quiz/1", "/api/v1/progress", "/api/v1/certificates", "/api/v1/notifications", "/api/v1/activity"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestMetricsEndpointIsPublic(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusUnauthorized) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoleGuardsOnManagerAndStudentGroups(t *testing.T) {
	as := func(role string) fiber.Handler {
		return func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(11))
			c.Locals("user_role", role)
			return c.Next()
		}
	}

	resp, err := newTestApp(as("student")).Test(httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = newTestApp(as("teacher")).Test(httptest.NewRequest(http.MethodGet, "/api/v1/progress", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = newTestApp(nil).Test(httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
