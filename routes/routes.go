package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/handlers"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/middleware"
)

// Register mounts every route group on app.
func Register(app *fiber.App, h *handlers.Handler) {
	PublicRoutes(app, h)
	AuthRoutes(app, h)
	InternRoutes(app, h)
	AdminRoutes(app, h)
	NotificationRoutes(app, h)
}

// authenticated is attached per group, never on /api/v1 itself, so public
// routes stay reachable without a token.
func authenticated(h *handlers.Handler) []fiber.Handler {
	return []fiber.Handler{middleware.Protected(h.JWTSecret), middleware.ActiveUser(h.DB)}
}
