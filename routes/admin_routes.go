package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/handlers"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/middleware"
)

func AdminRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", append(authenticated(h), middleware.AdminRequired())...)

	internships := admin.Group("/internships")
	internships.Get("", h.ListInternships)
	internships.Post("", h.CreateInternship)
	internships.Get("/:internshipId", h.GetInternship)
	internships.Put("/:internshipId", h.UpdateInternship)
	internships.Delete("/:internshipId", h.DeleteInternship)
	internships.Post("/:internshipId/tasks", h.AddTask)

	tasks := admin.Group("/tasks")
	tasks.Put("/:taskId", h.UpdateTask)
	tasks.Delete("/:taskId", h.DeleteTask)

	submissions := admin.Group("/submissions")
	submissions.Get("/pending", h.ListPendingSubmissions)
	submissions.Get("/:submissionId", h.GetSubmission)
	submissions.Post("/:submissionId/review", h.ReviewSubmission)

	admin.Get("/enrollments/:enrollmentId", h.GetEnrollmentProgress)

	payments := admin.Group("/payments")
	payments.Get("/pending", h.ListPendingPayments)
	payments.Get("/:paymentId", h.GetPayment)
	payments.Post("/:paymentId/verify", h.VerifyPayment)
	payments.Post("/:paymentId/reject", h.RejectPayment)

	validations := admin.Group("/certificate-validations")
	validations.Get("/pending", h.ListPendingValidations)
	validations.Post("/:validationId/review", h.ReviewCertificateValidation)
	admin.Get("/certificates/:sessionId/download", h.DownloadCertificate)

	users := admin.Group("/users")
	users.Get("", h.GetAllUsers)
	users.Put("/:userId/status", h.ToggleUserStatus)

	admin.Get("/audit-logs", h.ListAuditLogs)
}
