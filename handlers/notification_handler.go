package handlers

import (
	"errors"
	"fmt"
	"log"

	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
)

func (h *Handler) ListNotifications(c *fiber.Ctx) error {
	list, err := h.Notifications.ListForUser(identity(c).UserID, c.QueryBool("unread", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "notificationId")
	if !ok {
		return badRequest(c, "Invalid notification ID")
	}
	updated, err := h.Notifications.MarkRead(identity(c).UserID, id)
	if err != nil {
		return respondError(c, err)
	}
	if !updated {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// ServeWs authenticates a socket with an {"type":"auth","token":...} frame and
// then streams the user's notifications to it.
func (h *Handler) ServeWs(c *websocketcontrib.Conn) {
	type AuthMessage struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	var authMsg AuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		log.Printf("WebSocket auth failed: invalid or missing auth message, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	userID, err := h.socketUser(authMsg.Token)
	if err != nil {
		log.Printf("WebSocket auth failed: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}

	_ = c.WriteJSON(fiber.Map{"type": "ready"})
	h.Hub.Serve(userID, c)
}

func (h *Handler) socketUser(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.JWTSecret), nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}
	rawID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, err
	}

	var user models.User
	if err := h.DB.Select("id", "is_active").First(&user, "id = ?", userID).Error; err != nil {
		return uuid.Nil, err
	}
	if !user.IsActive {
		return uuid.Nil, errors.New("account is deactivated")
	}
	return userID, nil
}
