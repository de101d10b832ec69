package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/handlers"
)

func NotificationRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	notifications := api.Group("/notifications", authenticated(h)...)
	notifications.Get("", h.ListNotifications)
	notifications.Put("/:notificationId/read", h.MarkNotificationRead)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(h.ServeWs))
}
