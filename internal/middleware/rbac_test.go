package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-course-api/internal/models"
)

type stringerRole string

func (r stringerRole) String() string { return string(r) }

func guardedApp(userID interface{}, role interface{}, guard fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != nil {
			c.Locals("user_id", userID)
			c.Locals("user_role", role)
		}
		return c.Next()
	})
	app.Use(guard)
	app.Get("/activity", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireCourseManagerAdmitsTeachersAndAdmins(t *testing.T) {
	cases := []struct {
		name   string
		userID interface{}
		role   interface{}
		status int
	}{
		{name: "teacher", userID: uint(2), role: models.RoleTeacher, status: fiber.StatusOK},
		{name: "admin with padding", userID: uint(3), role: " Admin ", status: fiber.StatusOK},
		{name: "stringer role", userID: uint(4), role: stringerRole("TEACHER"), status: fiber.StatusOK},
		{name: "student", userID: uint(5), role: models.RoleStudent, status: fiber.StatusForbidden},
		{name: "unknown role type", userID: uint(6), role: 42, status: fiber.StatusForbidden},
		{name: "anonymous", userID: nil, role: nil, status: fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := guardedApp(tc.userID, tc.role, RequireCourseManager())
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/activity", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRequireRoleStudentOnly(t *testing.T) {
	student := guardedApp(uint(9), models.RoleStudent, RequireRole(models.RoleStudent))
	resp, err := student.Test(httptest.NewRequest(http.MethodGet, "/activity", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	teacher := guardedApp(uint(2), models.RoleTeacher, RequireRole(models.RoleStudent))
	resp, err = teacher.Test(httptest.NewRequest(http.MethodGet, "/activity", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
