package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lifeline-connect/lifeline_connect/internal/identity"
)

// RegisterAuthRoutes wires the registration, login and verification endpoints.
func RegisterAuthRoutes(r fiber.Router, h *identity.Handler, rateLimiter, sessionAuth fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", rateLimiter, h.Register)
	group.Post("/login", rateLimiter, h.Login)
	group.Post("/verify", h.Verify)
	group.Post("/logout", sessionAuth, h.Logout)
}
