package handlers

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
)

func (h *Handler) GetAllUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))
	offset := (page - 1) * limit

	query := h.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if search != "" {
		searchTerm := "%" + search + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", searchTerm, searchTerm)
	}

	var totalUsers int64
	if err := query.Count(&totalUsers).Error; err != nil {
		return respondError(c, err)
	}
	var users []models.User
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": users,
		"meta": fiber.Map{
			"total_users":  totalUsers,
			"total_pages":  int(math.Ceil(float64(totalUsers) / float64(limit))),
			"current_page": page,
		},
	})
}

func (h *Handler) ToggleUserStatus(c *fiber.Ctx) error {
	userID, ok := paramUUID(c, "userId")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}
	type Request struct {
		IsActive bool `json:"is_active"`
	}
	var req Request
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	me := identity(c)
	if userID == me.UserID && !req.IsActive {
		return badRequest(c, "You cannot deactivate your own account")
	}

	res := h.DB.Model(&models.User{}).Where("id = ?", userID).Update("is_active", req.IsActive)
	if res.Error != nil {
		return respondError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	h.Auditor.Log("user.status_changed", &me.UserID, map[string]interface{}{
		"user_id":   userID.String(),
		"is_active": req.IsActive,
	})
	return c.JSON(fiber.Map{"message": "User status updated successfully."})
}

func (h *Handler) ListAuditLogs(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	entries, err := h.Auditor.ListRecent(limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}
