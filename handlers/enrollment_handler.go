package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Enroll(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "internshipId")
	if !ok {
		return badRequest(c, "Invalid internship ID")
	}
	enrollment, err := h.Services.Enrollments.Enroll(c.UserContext(), identity(c).UserID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(enrollment)
}

func (h *Handler) Unenroll(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "enrollmentId")
	if !ok {
		return badRequest(c, "Invalid enrollment ID")
	}
	removed, err := h.Services.Enrollments.Unenroll(c.UserContext(), identity(c).UserID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Unenrolled successfully", "enrollment": removed})
}

func (h *Handler) ListMyEnrollments(c *fiber.Ctx) error {
	list, err := h.Services.Enrollments.ListForUser(c.UserContext(), identity(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) GetEnrollmentProgress(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "enrollmentId")
	if !ok {
		return badRequest(c, "Invalid enrollment ID")
	}
	me := identity(c)
	progress, err := h.Services.Enrollments.GetProgress(c.UserContext(), me.UserID, id, me.IsAdmin())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(progress)
}

func (h *Handler) ListEnrollmentSubmissions(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "enrollmentId")
	if !ok {
		return badRequest(c, "Invalid enrollment ID")
	}
	me := identity(c)
	subs, err := h.Services.Submissions.ListForEnrollment(c.UserContext(), me.UserID, id, me.IsAdmin())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(subs)
}
