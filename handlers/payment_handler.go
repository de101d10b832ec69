package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type VerifyPaymentRequest struct {
	VerifiedTransactionID string `json:"verified_transaction_id" validate:"required"`
}

type RejectPaymentRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

func (h *Handler) InitiateCertificatePayment(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "enrollmentId")
	if !ok {
		return badRequest(c, "Invalid enrollment ID")
	}
	payment, err := h.Services.Payments.InitiateCertificatePayment(c.UserContext(), identity(c).UserID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// UploadPaymentProof takes a multipart form with transaction_id and proof.
func (h *Handler) UploadPaymentProof(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "paymentId")
	if !ok {
		return badRequest(c, "Invalid payment ID")
	}
	data, name, err := formFile(c, "proof")
	if err != nil {
		return respondError(c, err)
	}
	payment, err := h.Services.Payments.UploadProof(c.UserContext(), identity(c).UserID, id, c.FormValue("transaction_id"), data, name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payment)
}

func (h *Handler) GetPayment(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "paymentId")
	if !ok {
		return badRequest(c, "Invalid payment ID")
	}
	me := identity(c)
	payment, err := h.Services.Payments.Get(c.UserContext(), me.UserID, id, me.IsAdmin())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payment)
}

func (h *Handler) ListMyPayments(c *fiber.Ctx) error {
	list, err := h.Services.Payments.ListForUser(c.UserContext(), identity(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) ListPendingPayments(c *fiber.Ctx) error {
	list, err := h.Services.Payments.ListPending(c.UserContext(), c.QueryBool("with_proof", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) VerifyPayment(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "paymentId")
	if !ok {
		return badRequest(c, "Invalid payment ID")
	}
	var req VerifyPaymentRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	payment, session, err := h.Services.Payments.VerifyPayment(c.UserContext(), id, identity(c).UserID, req.VerifiedTransactionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"payment": payment, "certificate": session})
}

func (h *Handler) RejectPayment(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "paymentId")
	if !ok {
		return badRequest(c, "Invalid payment ID")
	}
	var req RejectPaymentRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	payment, err := h.Services.Payments.RejectPayment(c.UserContext(), id, identity(c).UserID, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payment)
}
