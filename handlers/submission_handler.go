package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/services"
)

type SubmitTaskRequest struct {
	GithubURL string                 `json:"github_url" validate:"omitempty,url"`
	Answers   map[string]interface{} `json:"answers"`
	Notes     string                 `json:"notes" validate:"max=2000"`
}

type ReviewSubmissionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVED REJECTED"`
	Score    *int   `json:"score" validate:"omitempty,gte=0"`
	Feedback string `json:"feedback" validate:"max=4000"`
}

func (h *Handler) SubmitTask(c *fiber.Ctx) error {
	taskID, ok := paramUUID(c, "taskId")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}
	var req SubmitTaskRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	sub, err := h.Services.Submissions.Submit(c.UserContext(), identity(c).UserID, taskID, services.SubmissionPayload{
		GithubURL: req.GithubURL,
		Answers:   req.Answers,
		Notes:     req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// SubmitTaskFile takes the multipart attachment of a FILE task and records the
// attempt in the same request.
func (h *Handler) SubmitTaskFile(c *fiber.Ctx) error {
	taskID, ok := paramUUID(c, "taskId")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}
	data, name, err := formFile(c, "file")
	if err != nil {
		return respondError(c, err)
	}
	if data == nil {
		return badRequest(c, "file is required")
	}
	notes := c.FormValue("notes")
	if len(notes) > 2000 {
		return badRequest(c, "notes must be at most 2000 characters")
	}
	sub, err := h.Services.Submissions.SubmitFile(c.UserContext(), identity(c).UserID, taskID, data, name, notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

func (h *Handler) GetSubmission(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "submissionId")
	if !ok {
		return badRequest(c, "Invalid submission ID")
	}
	me := identity(c)
	sub, err := h.Services.Submissions.Get(c.UserContext(), me.UserID, id, me.IsAdmin())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sub)
}

func (h *Handler) ListPendingSubmissions(c *fiber.Ctx) error {
	var internshipID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("internship_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "Invalid internship ID")
		}
		internshipID = &id
	}
	subs, err := h.Services.Submissions.ListPending(c.UserContext(), internshipID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(subs)
}

func (h *Handler) ReviewSubmission(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "submissionId")
	if !ok {
		return badRequest(c, "Invalid submission ID")
	}
	var req ReviewSubmissionRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	sub, err := h.Services.Submissions.Review(c.UserContext(), id, identity(c).UserID, services.ReviewInput{
		Decision: models.SubmissionStatus(req.Decision),
		Score:    req.Score,
		Feedback: req.Feedback,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sub)
}
