package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// NonceRateLimit limits challenge requests per wallet (falling back to the
// client IP) using Redis. The limiter fails open: when Redis is unavailable
// the request proceeds rather than locking everyone out.
func NonceRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 10
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}

		var req struct {
			Wallet string `json:"wallet"`
		}
		_ = c.BodyParser(&req)
		subject := strings.TrimSpace(req.Wallet)
		if subject == "" {
			subject = c.IP()
		}

		key := "rl:nonce:" + subject
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return c.Status(http.StatusTooManyRequests).JSON(fiber.Map{
				"code":    "AUTH_RATE_LIMITED",
				"message": "Too many nonce requests. Try again later.",
			})
		}
		return c.Next()
	}
}
