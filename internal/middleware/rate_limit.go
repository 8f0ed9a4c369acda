package middleware

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit creates a per-user rate limiter middleware instance. Requests
// without an authenticated user share a bucket per client IP.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return fmt.Sprintf("%s:%s", identifier, rateLimitSubject(c))
		},
	})
}

func rateLimitSubject(c *fiber.Ctx) string {
	switch v := c.Locals("user_id").(type) {
	case uint:
		if v != 0 {
			return "user:" + strconv.FormatUint(uint64(v), 10)
		}
	case int:
		if v > 0 {
			return "user:" + strconv.Itoa(v)
		}
	case string:
		if id := strings.TrimSpace(v); id != "" && id != "0" {
			return "user:" + id
		}
	}
	return "ip:" + c.IP()
}
