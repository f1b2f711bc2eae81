package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lifeline-connect/lifeline_connect/internal/dashboard"
)

// RegisterDashboardRoutes wires the dashboard, its request removal and the
// donation toggle behind sessionAuth.
func RegisterDashboardRoutes(r fiber.Router, h *dashboard.Handler, sessionAuth fiber.Handler) {
	r.Get("/dashboard", sessionAuth, h.Show)
	r.Delete("/dashboard/requests/:id", sessionAuth, h.DeleteRequest)
	r.Put("/me/donation", sessionAuth, h.SetDonation)
}
