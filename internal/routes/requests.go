package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lifeline-connect/lifeline_connect/internal/requests"
)

// RegisterRequestRoutes wires the blood request lifecycle endpoints. Every
// route under /requests requires a session.
func RegisterRequestRoutes(r fiber.Router, h *requests.Handler, sessionAuth, idempotency fiber.Handler) {
	group := r.Group("/requests", sessionAuth)
	group.Get("/", h.ListActive)
	group.Get("/mine", h.ListMine)
	group.Post("/", idempotency, h.Create)
	group.Get("/:id", h.Get)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)
}
