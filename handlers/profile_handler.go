package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
)

type UpdateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=3"`
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	var user models.User
	if err := h.DB.Where("id = ?", identity(c).UserID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(user)
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	var user models.User
	if err := h.DB.Where("id = ?", identity(c).UserID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
		if err := h.DB.Model(&user).Update("full_name", user.FullName).Error; err != nil {
			return respondError(c, err)
		}
	}
	return c.JSON(user)
}

// GetMyProgress lists the caller's enrollments with their derived standing.
func (h *Handler) GetMyProgress(c *fiber.Ctx) error {
	me := identity(c)
	enrollments, err := h.Services.Enrollments.ListForUser(c.UserContext(), me.UserID)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]interface{}, 0, len(enrollments))
	for _, e := range enrollments {
		p, err := h.Services.Enrollments.GetProgress(c.UserContext(), me.UserID, e.ID, false)
		if err != nil {
			return respondError(c, err)
		}
		out = append(out, fiber.Map{
			"enrollment_id":    e.ID,
			"internship_title": p.InternshipTitle,
			"status":           e.Status,
			"standing":         p.Standing,
		})
	}
	return c.JSON(out)
}
