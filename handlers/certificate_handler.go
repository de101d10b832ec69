package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type ReviewValidationRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes" validate:"max=2000"`
}

func (h *Handler) ListMyCertificates(c *fiber.Ctx) error {
	list, err := h.Services.Certificates.ListForUser(c.UserContext(), identity(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) DownloadCertificate(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "sessionId")
	if !ok {
		return badRequest(c, "Invalid certificate ID")
	}
	me := identity(c)
	session, err := h.Services.Certificates.IssueCertificateDownload(c.UserContext(), me.UserID, id, me.IsAdmin())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"certificate_number": session.CertificateNumber,
		"certificate_url":    session.CertificateURL,
		"issued_at":          session.IssuedAt,
	})
}

// VerifyCertificate is public so employers can check a certificate number.
func (h *Handler) VerifyCertificate(c *fiber.Ctx) error {
	session, err := h.Services.Certificates.VerifyCertificateNumber(c.UserContext(), c.Params("number"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"valid":              true,
		"certificate_number": session.CertificateNumber,
		"holder_name":        session.HolderName,
		"internship_title":   session.InternshipTitle,
		"percentage":         session.Percentage,
		"issued_at":          session.IssuedAt,
	})
}

func (h *Handler) SubmitCertificateValidation(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "sessionId")
	if !ok {
		return badRequest(c, "Invalid certificate ID")
	}
	data, name, err := formFile(c, "file")
	if err != nil {
		return respondError(c, err)
	}
	if data == nil {
		return badRequest(c, "file is required")
	}
	v, err := h.Services.Certificates.SubmitValidation(c.UserContext(), identity(c).UserID, id, data, name)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

func (h *Handler) ListPendingValidations(c *fiber.Ctx) error {
	list, err := h.Services.Certificates.ListPendingValidations(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) ReviewCertificateValidation(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "validationId")
	if !ok {
		return badRequest(c, "Invalid validation ID")
	}
	var req ReviewValidationRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	v, err := h.Services.Certificates.ReviewValidation(c.UserContext(), id, identity(c).UserID, req.Approve, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(v)
}
