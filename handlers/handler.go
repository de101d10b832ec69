package handlers

import (
	"errors"
	"io"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/middleware"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/notifications"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/services"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/websocket"
	"gorm.io/gorm"
)

var validate = validator.New()

// Handler holds what the HTTP layer needs. One value serves every route.
type Handler struct {
	DB            *gorm.DB
	Services      *services.Services
	Notifications *notifications.Dispatcher
	Hub           *websocket.Hub
	Auditor       services.DBAuditor
	Mailer        notifications.Mailer
	JWTSecret     string
}

// respondError maps workflow errors onto HTTP statuses. Unknown errors are
// logged and hidden behind a 500.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrNotEnrolled), errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrTaskLocked):
		status = fiber.StatusLocked
	case errors.Is(err, services.ErrAttemptLimitExceeded):
		status = fiber.StatusTooManyRequests
	case errors.Is(err, services.ErrAlreadyEnrolled), errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	}

	if status == fiber.StatusInternalServerError {
		log.Printf("🔥 %s %s failed: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// parseBody decodes and validates a JSON body. The returned error is meant
// for the client.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return errors.New("Cannot parse JSON")
	}
	return validate.Struct(out)
}

func identity(c *fiber.Ctx) middleware.Identity {
	id, _ := middleware.CurrentIdentity(c)
	return id
}

// formFile reads an optional multipart file. A missing field yields nil data.
func formFile(c *fiber.Ctx, field string) ([]byte, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, fh.Filename, nil
}
