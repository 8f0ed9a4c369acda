package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-course-api/internal/models"
	"github.com/noah-isme/gema-course-api/internal/utils"
)

// courseManagerRoles may author tasks, lessons and quizzes. Whether a teacher
// manages a particular course is decided by the services.
var courseManagerRoles = []string{models.RoleTeacher, models.RoleAdmin}

// RequireRole guards a route group so only the listed course roles reach it.
// Requests without a user are rejected as unauthenticated.
func RequireRole(roles ...string) fiber.Handler {
	allowed := roleSet(roles...)

	return func(c *fiber.Ctx) error {
		if c.Locals("user_id") == nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}
		if !allowed[RoleFromContext(c)] {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}
		return c.Next()
	}
}

// RequireCourseManager admits teachers and admins.
func RequireCourseManager() fiber.Handler {
	return RequireRole(courseManagerRoles...)
}

// RoleFromContext returns the lower-cased role stored by the JWT middleware.
func RoleFromContext(c *fiber.Ctx) string {
	return normalizeRoleValue(c.Locals("user_role"))
}

func isCourseManager(role string) bool {
	for _, manager := range courseManagerRoles {
		if role == manager {
			return true
		}
	}
	return false
}

func roleSet(roles ...string) map[string]bool {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		if normalized := strings.ToLower(strings.TrimSpace(role)); normalized != "" {
			allowed[normalized] = true
		}
	}
	return allowed
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		return ""
	}
}
