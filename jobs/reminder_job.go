package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/services"
)

const paymentReviewGrace = 48 * time.Hour

// RemindPendingPayments nudges admins about payments whose proof has waited
// for review longer than the grace period.
func (r *Runner) RemindPendingPayments() int {
	log.Println("Running job: RemindPendingPayments...")
	now := r.now()

	var pending []models.Payment
	err := r.DB.
		Where("payment_status = ? AND proof_uploaded_at IS NOT NULL", models.PaymentPending).
		Find(&pending).Error
	if err != nil {
		log.Printf("Error checking for pending payments: %v", err)
		return 0
	}

	overdue := 0
	for _, p := range pending {
		if p.ProofUploadedAt != nil && now.Sub(*p.ProofUploadedAt) >= paymentReviewGrace {
			overdue++
		}
	}
	if overdue == 0 || r.Notifier == nil {
		return 0
	}

	var admins []models.User
	if err := r.DB.Where("role = ? AND is_active = ?", models.RoleAdmin, true).Find(&admins).Error; err != nil {
		log.Printf("Error loading admins: %v", err)
		return 0
	}

	msg := fmt.Sprintf("%d certificate payment(s) with uploaded proof have waited more than %d hours for verification.",
		overdue, int(paymentReviewGrace.Hours()))
	for _, admin := range admins {
		if err := r.Notifier.Notify(admin.ID, "Payments awaiting verification", msg, services.KindPayment); err != nil {
			log.Printf("⚠️ Failed to notify admin %s: %v", admin.ID, err)
		}
	}
	return overdue
}
