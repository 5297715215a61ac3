package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func newRateLimitedApp(cache *redis.Client, maxPerMin int) *fiber.App {
	app := fiber.New()
	app.Post("/nonce", NonceRateLimit(cache, maxPerMin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func postNonce(t *testing.T, app *fiber.App, wallet string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/nonce", strings.NewReader(`{"wallet":"`+wallet+`"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestNonceRateLimitEnforced(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := newRateLimitedApp(cache, 3)

	for i := 0; i < 3; i++ {
		if status := postNonce(t, app, testWallet); status != fiber.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, status)
		}
	}
	if status := postNonce(t, app, testWallet); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", status)
	}

	// A different wallet has its own counter.
	other := "G" + strings.Repeat("B", 55)
	if status := postNonce(t, app, other); status != fiber.StatusOK {
		t.Fatalf("expected other wallet to pass, got %d", status)
	}
}

func TestNonceRateLimitWindowExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := newRateLimitedApp(cache, 1)

	if status := postNonce(t, app, testWallet); status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if status := postNonce(t, app, testWallet); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", status)
	}

	mr.FastForward(61 * time.Second)

	if status := postNonce(t, app, testWallet); status != fiber.StatusOK {
		t.Fatalf("expected 200 after window reset, got %d", status)
	}
}

func TestNonceRateLimitFailsOpenWithoutRedis(t *testing.T) {
	app := newRateLimitedApp(nil, 1)

	for i := 0; i < 5; i++ {
		if status := postNonce(t, app, testWallet); status != fiber.StatusOK {
			t.Fatalf("request %d: expected 200 without redis, got %d", i+1, status)
		}
	}
}
