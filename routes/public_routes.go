package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/handlers"
)

func PublicRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")
	api.Get("/verify/certificates/:number", h.VerifyCertificate)
}
