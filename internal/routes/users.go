package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lumengate/lumengate/internal/users"
)

// RegisterUserRoutes wires the Bearer-guarded profile endpoints.
func RegisterUserRoutes(r fiber.Router, h *users.Handler, bearer fiber.Handler) {
	group := r.Group("/users", bearer)
	group.Get("/me", h.Me)
	group.Patch("/me", h.UpdateMe)
}
