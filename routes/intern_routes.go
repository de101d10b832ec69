package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/handlers"
)

func InternRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")
	auth := authenticated(h)

	internships := api.Group("/internships", auth...)
	internships.Get("", h.ListInternships)
	internships.Get("/:internshipId", h.GetInternship)
	internships.Post("/:internshipId/enroll", h.Enroll)

	enrollments := api.Group("/enrollments", auth...)
	enrollments.Get("", h.ListMyEnrollments)
	enrollments.Get("/:enrollmentId", h.GetEnrollmentProgress)
	enrollments.Delete("/:enrollmentId", h.Unenroll)
	enrollments.Get("/:enrollmentId/submissions", h.ListEnrollmentSubmissions)
	enrollments.Post("/:enrollmentId/certificate-payment", h.InitiateCertificatePayment)

	tasks := api.Group("/tasks", auth...)
	tasks.Post("/:taskId/submissions", h.SubmitTask)
	tasks.Post("/:taskId/submissions/file", h.SubmitTaskFile)
	api.Group("/submissions", auth...).Get("/:submissionId", h.GetSubmission)

	payments := api.Group("/payments", auth...)
	payments.Get("", h.ListMyPayments)
	payments.Get("/:paymentId", h.GetPayment)
	payments.Post("/:paymentId/proof", h.UploadPaymentProof)

	certificates := api.Group("/certificates", auth...)
	certificates.Get("", h.ListMyCertificates)
	certificates.Get("/:sessionId/download", h.DownloadCertificate)
	certificates.Post("/:sessionId/validations", h.SubmitCertificateValidation)
}
