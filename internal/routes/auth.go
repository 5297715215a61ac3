package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lumengate/lumengate/internal/auth"
)

// RegisterAuthRoutes wires the wallet authentication endpoints. Only the
// nonce endpoint is rate limited; a verify attempt already costs a nonce.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/nonce", rateLimiter, h.Nonce)
	} else {
		group.Post("/nonce", h.Nonce)
	}
	group.Post("/verify", h.Verify)
	group.Post("/refresh", h.Refresh)
}
