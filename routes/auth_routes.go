package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/handlers"
)

func AuthRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", h.RegisterUser)
	auth.Post("/login", h.LoginUser)

	profile := api.Group("/profile", authenticated(h)...)
	profile.Get("", h.GetProfile)
	profile.Put("", h.UpdateProfile)
	profile.Get("/progress", h.GetMyProgress)
}
