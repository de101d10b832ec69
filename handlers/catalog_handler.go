package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/services"
)

type InternshipRequest struct {
	Title            string          `json:"title" validate:"required"`
	Description      string          `json:"description"`
	DurationDays     int             `json:"duration_days" validate:"required,gt=0"`
	CertificatePrice decimal.Decimal `json:"certificate_price"`
	PassPercentage   float64         `json:"pass_percentage" validate:"gte=0,lte=100"`
	IsActive         *bool           `json:"is_active"`
}

type InternshipPatchRequest struct {
	Title            *string          `json:"title" validate:"omitempty,min=1"`
	Description      *string          `json:"description"`
	DurationDays     *int             `json:"duration_days" validate:"omitempty,gt=0"`
	CertificatePrice *decimal.Decimal `json:"certificate_price"`
	PassPercentage   *float64         `json:"pass_percentage" validate:"omitempty,gte=0,lte=100"`
	IsActive         *bool            `json:"is_active"`
}

type TaskRequest struct {
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description"`
	Points         int    `json:"points" validate:"required,gt=0"`
	SubmissionType string `json:"submission_type" validate:"required,oneof=GITHUB FORM FILE"`
	WaitTimeHours  int    `json:"wait_time_hours" validate:"gte=0"`
	MaxAttempts    int    `json:"max_attempts" validate:"omitempty,gte=1"`
	IsActive       *bool  `json:"is_active"`
}

type TaskPatchRequest struct {
	Title          *string `json:"title" validate:"omitempty,min=1"`
	Description    *string `json:"description"`
	Points         *int    `json:"points" validate:"omitempty,gt=0"`
	SubmissionType *string `json:"submission_type" validate:"omitempty,oneof=GITHUB FORM FILE"`
	WaitTimeHours  *int    `json:"wait_time_hours" validate:"omitempty,gte=0"`
	MaxAttempts    *int    `json:"max_attempts" validate:"omitempty,gte=1"`
	IsActive       *bool   `json:"is_active"`
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func (h *Handler) ListInternships(c *fiber.Ctx) error {
	activeOnly := !(identity(c).IsAdmin() && c.QueryBool("all", false))
	list, err := h.Services.Catalog.ListInternships(c.UserContext(), activeOnly)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) GetInternship(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "internshipId")
	if !ok {
		return badRequest(c, "Invalid internship ID")
	}
	internship, err := h.Services.Catalog.GetInternship(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	if !internship.IsActive && !identity(c).IsAdmin() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Internship not found"})
	}
	return c.JSON(internship)
}

func (h *Handler) CreateInternship(c *fiber.Ctx) error {
	var req InternshipRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	internship, err := h.Services.Catalog.CreateInternship(c.UserContext(), identity(c).UserID, services.InternshipInput{
		Title:            req.Title,
		Description:      req.Description,
		DurationDays:     req.DurationDays,
		CertificatePrice: req.CertificatePrice,
		PassPercentage:   req.PassPercentage,
		IsActive:         boolOr(req.IsActive, true),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(internship)
}

func (h *Handler) UpdateInternship(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "internshipId")
	if !ok {
		return badRequest(c, "Invalid internship ID")
	}
	var req InternshipPatchRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	internship, err := h.Services.Catalog.UpdateInternship(c.UserContext(), identity(c).UserID, id, services.InternshipPatch{
		Title:            req.Title,
		Description:      req.Description,
		DurationDays:     req.DurationDays,
		CertificatePrice: req.CertificatePrice,
		PassPercentage:   req.PassPercentage,
		IsActive:         req.IsActive,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(internship)
}

func (h *Handler) DeleteInternship(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "internshipId")
	if !ok {
		return badRequest(c, "Invalid internship ID")
	}
	if err := h.Services.Catalog.DeleteInternship(c.UserContext(), identity(c).UserID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Internship deleted successfully"})
}

func (h *Handler) AddTask(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "internshipId")
	if !ok {
		return badRequest(c, "Invalid internship ID")
	}
	var req TaskRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	maxAttempts := req.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 3
	}
	task, err := h.Services.Catalog.AddTask(c.UserContext(), identity(c).UserID, id, services.TaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Points:         req.Points,
		SubmissionType: models.SubmissionType(req.SubmissionType),
		WaitTimeHours:  req.WaitTimeHours,
		MaxAttempts:    maxAttempts,
		IsActive:       boolOr(req.IsActive, true),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "taskId")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}
	var req TaskPatchRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	patch := services.TaskPatch{
		Title:         req.Title,
		Description:   req.Description,
		Points:        req.Points,
		WaitTimeHours: req.WaitTimeHours,
		MaxAttempts:   req.MaxAttempts,
		IsActive:      req.IsActive,
	}
	if req.SubmissionType != nil {
		st := models.SubmissionType(*req.SubmissionType)
		patch.SubmissionType = &st
	}
	task, err := h.Services.Catalog.UpdateTask(c.UserContext(), identity(c).UserID, id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(task)
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "taskId")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}
	if err := h.Services.Catalog.DeleteTask(c.UserContext(), identity(c).UserID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}
