package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRateLimitSubjectFallsBackToClientIP(t *testing.T) {
	cases := map[string]struct {
		userID   interface{}
		expected string
	}{
		"missing user": {userID: nil, expected: "ip:0.0.0.0"},
		"zero uint":    {userID: uint(0), expected: "ip:0.0.0.0"},
		"uint id":      {userID: uint(7), expected: "user:7"},
		"int id":       {userID: 12, expected: "user:12"},
		"string id":    {userID: " 31 ", expected: "user:31"},
		"blank string": {userID: "  ", expected: "ip:0.0.0.0"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				if tc.userID != nil {
					c.Locals("user_id", tc.userID)
				}
				return c.SendString(rateLimitSubject(c))
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.Equal(t, tc.expected, string(body))
		})
	}
}

func TestRateLimitKeepsSeparateBucketsPerUser(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if id := c.Get("X-Test-User"); id != "" {
			c.Locals("user_id", id)
		}
		return c.Next()
	})
	app.Use(RateLimit("task-submit", 1, time.Minute))
	app.Post("/submit", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusOK, send("1"))
	require.Equal(t, fiber.StatusTooManyRequests, send("1"))
	require.Equal(t, fiber.StatusOK, send("2"))
	require.Equal(t, fiber.StatusOK, send(""))
	require.Equal(t, fiber.StatusTooManyRequests, send(""))
}
