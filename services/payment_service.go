package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/payments"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentService struct {
	*core
}

// checkTransition enforces PENDING -> {VERIFIED, REJECTED}. VERIFIED is only
// reachable once both the transaction id and the proof file are on record.
func checkTransition(p models.Payment, to models.PaymentStatus) error {
	if p.PaymentStatus != models.PaymentPending {
		return conflict("payment is already %s", p.PaymentStatus)
	}
	switch to {
	case models.PaymentVerified:
		if !p.HasProof() {
			return invalid("payment has no transaction id and proof on record")
		}
	case models.PaymentRejected:
	default:
		return invalid("unsupported payment status %q", to)
	}
	return nil
}

// InitiateCertificatePayment opens a PENDING certificate payment for a
// completed and passed enrollment, priced from the internship.
func (s *PaymentService) InitiateCertificatePayment(ctx context.Context, userID, enrollmentID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	var internship models.Internship
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var enrollment models.Enrollment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&enrollment, "id = ?", enrollmentID).Error; err != nil {
			return translate(err, "enrollment", enrollmentID)
		}
		if enrollment.UserID != userID {
			return fmt.Errorf("%w: enrollment belongs to another user", ErrUnauthorized)
		}
		if err := tx.First(&internship, "id = ?", enrollment.InternshipID).Error; err != nil {
			return translate(err, "internship", enrollment.InternshipID)
		}
		tasks, err := loadTasks(tx, internship.ID)
		if err != nil {
			return err
		}
		if enrollment.CertificatePurchased {
			return conflict("certificate already purchased for this enrollment")
		}
		standing := EvaluateStanding(enrollment, internship, tasks)
		if !standing.Eligible {
			return conflict("enrollment is not eligible for a certificate (completed=%t, %.1f%% of %.0f%% required)",
				enrollment.IsCompleted, standing.Percentage, standing.PassPercentage)
		}

		var pending int64
		if err := tx.Model(&models.Payment{}).
			Where("enrollment_id = ? AND payment_type = ? AND payment_status = ?",
				enrollmentID, models.PaymentTypeCertificate, models.PaymentPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return conflict("a certificate payment is already pending for this enrollment")
		}

		payment = models.Payment{
			UserID:        userID,
			InternshipID:  &internship.ID,
			EnrollmentID:  &enrollment.ID,
			Amount:        internship.CertificatePrice,
			PaymentType:   models.PaymentTypeCertificate,
			PaymentStatus: models.PaymentPending,
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(userID, "Certificate payment opened",
		fmt.Sprintf("Pay %s for your %s certificate and upload the transaction id with a screenshot.",
			payments.FormatAmount(payment.Amount), internship.Title),
		KindPayment)
	s.audit("payment.initiated", userID, map[string]interface{}{
		"payment_id":    payment.ID.String(),
		"enrollment_id": enrollmentID.String(),
		"amount":        payment.Amount.String(),
	})
	return &payment, nil
}

// UploadProof attaches the intern's transaction id and proof file to a pending
// payment. Both are mandatory. The file is stored before the row is locked so
// no transaction stays open across the upload.
func (s *PaymentService) UploadProof(ctx context.Context, userID, paymentID uuid.UUID, transactionID string, proof []byte, filename string) (*models.Payment, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, invalid("transaction id is required")
	}
	if len(proof) == 0 {
		return nil, invalid("payment proof file is required")
	}
	txnID, err := payments.NormalizeTransactionID(transactionID)
	if err != nil {
		return nil, invalid("%v", err)
	}

	db := s.db.WithContext(ctx)
	var current models.Payment
	if err := db.First(&current, "id = ?", paymentID).Error; err != nil {
		return nil, translate(err, "payment", paymentID)
	}
	if current.UserID != userID {
		return nil, fmt.Errorf("%w: payment belongs to another user", ErrUnauthorized)
	}
	if current.PaymentStatus != models.PaymentPending {
		return nil, conflict("payment is already %s", current.PaymentStatus)
	}

	doc, err := utils.PrepareDocument(proof, s.maxProofBytes)
	if err != nil {
		return nil, invalid("payment proof: %v", err)
	}
	if s.files == nil {
		return nil, errors.New("file storage is not configured")
	}
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	url, err := s.files.Store(ctx, doc.Data, "payment-proofs", fmt.Sprintf("%s_%s%s", paymentID, base, doc.Extension))
	if err != nil {
		return nil, fmt.Errorf("store payment proof: %w", err)
	}

	now := s.now()
	var payment models.Payment
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, "id = ?", paymentID).Error; err != nil {
			return translate(err, "payment", paymentID)
		}
		if payment.PaymentStatus != models.PaymentPending {
			return conflict("payment is already %s", payment.PaymentStatus)
		}
		payment.TransactionID = &txnID
		payment.PaymentProofURL = &url
		payment.ProofUploadedAt = &now
		return tx.Model(&payment).Select("transaction_id", "payment_proof_url", "proof_uploaded_at").Updates(&payment).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit("payment.proof_uploaded", userID, map[string]interface{}{
		"payment_id":     paymentID.String(),
		"transaction_id": txnID,
	})
	return &payment, nil
}

// VerifyPayment confirms a certificate payment and issues the certificate
// session in the same transaction. It is the only way a session is created.
func (s *PaymentService) VerifyPayment(ctx context.Context, paymentID, reviewerID uuid.UUID, verifiedTransactionID string) (*models.Payment, *models.CertificateSession, error) {
	verified, err := payments.NormalizeTransactionID(verifiedTransactionID)
	if err != nil {
		return nil, nil, invalid("verified transaction id: %v", err)
	}

	now := s.now()
	var payment models.Payment
	var session models.CertificateSession
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ref models.Payment
		if err := tx.First(&ref, "id = ?", paymentID).Error; err != nil {
			return translate(err, "payment", paymentID)
		}
		if ref.PaymentType != models.PaymentTypeCertificate {
			return invalid("only certificate payments issue certificates")
		}
		if ref.EnrollmentID == nil {
			return conflict("the enrollment of this payment was removed")
		}

		// Enrollment before payment, the same order unenroll takes them in.
		var enrollment models.Enrollment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&enrollment, "id = ?", *ref.EnrollmentID).Error; err != nil {
			return translate(err, "enrollment", *ref.EnrollmentID)
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, "id = ?", paymentID).Error; err != nil {
			return translate(err, "payment", paymentID)
		}
		if err := checkTransition(payment, models.PaymentVerified); err != nil {
			return err
		}
		if enrollment.CertificatePurchased {
			return conflict("certificate already issued for this enrollment")
		}

		var reused int64
		if err := tx.Model(&models.Payment{}).
			Where("verified_transaction_id = ? AND payment_status = ? AND id <> ?", verified, models.PaymentVerified, payment.ID).
			Count(&reused).Error; err != nil {
			return err
		}
		if reused > 0 {
			return conflict("transaction %s already verified another payment", verified)
		}

		var user models.User
		if err := tx.First(&user, "id = ?", enrollment.UserID).Error; err != nil {
			return translate(err, "user", enrollment.UserID)
		}
		var internship models.Internship
		if err := tx.First(&internship, "id = ?", enrollment.InternshipID).Error; err != nil {
			return translate(err, "internship", enrollment.InternshipID)
		}
		tasks, err := loadTasks(tx, internship.ID)
		if err != nil {
			return err
		}
		standing := EvaluateStanding(enrollment, internship, tasks)

		number, err := utils.GenerateUniqueCertificateNumber(tx, s.certificatePrefix, now)
		if err != nil {
			return err
		}
		session = models.CertificateSession{
			EnrollmentID:      enrollment.ID,
			PaymentID:         payment.ID,
			UserID:            enrollment.UserID,
			InternshipID:      internship.ID,
			CertificateNumber: number,
			HolderName:        user.FullName,
			InternshipTitle:   internship.Title,
			FinalScore:        standing.FinalScore,
			MaxScore:          standing.MaxScore,
			Percentage:        standing.Percentage,
			IssuedAt:          now,
		}
		if err := tx.Create(&session).Error; err != nil {
			return translate(err, "certificate session", enrollment.ID)
		}

		payment.PaymentStatus = models.PaymentVerified
		payment.VerifiedTransactionID = &verified
		payment.VerifiedAt = &now
		payment.ReviewedBy = &reviewerID
		payment.ReviewedAt = &now
		if err := tx.Model(&payment).
			Select("payment_status", "verified_transaction_id", "verified_at", "reviewed_by", "reviewed_at").
			Updates(&payment).Error; err != nil {
			return err
		}
		return tx.Model(&enrollment).Update("certificate_purchased", true).Error
	})
	if err != nil {
		return nil, nil, err
	}

	if payment.TransactionID != nil && *payment.TransactionID != verified {
		log.Printf("⚠️ Payment %s verified with %s but the intern reported %s", payment.ID, verified, *payment.TransactionID)
	}
	s.notify(payment.UserID, "Certificate issued",
		fmt.Sprintf("Your payment was verified. Certificate %s for %s is ready to download.", session.CertificateNumber, session.InternshipTitle),
		KindCertificate)
	s.audit("payment.verified", reviewerID, map[string]interface{}{
		"payment_id":         payment.ID.String(),
		"certificate_number": session.CertificateNumber,
	})
	return &payment, &session, nil
}

// RejectPayment closes a pending payment. The enrollment stays eligible so the
// intern can open a new payment.
func (s *PaymentService) RejectPayment(ctx context.Context, paymentID, reviewerID uuid.UUID, reason string) (*models.Payment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalid("a rejection reason is required")
	}

	now := s.now()
	var payment models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, "id = ?", paymentID).Error; err != nil {
			return translate(err, "payment", paymentID)
		}
		if err := checkTransition(payment, models.PaymentRejected); err != nil {
			return err
		}
		payment.PaymentStatus = models.PaymentRejected
		payment.RejectionReason = &reason
		payment.ReviewedBy = &reviewerID
		payment.ReviewedAt = &now
		return tx.Model(&payment).
			Select("payment_status", "rejection_reason", "reviewed_by", "reviewed_at").
			Updates(&payment).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(payment.UserID, "Payment rejected",
		fmt.Sprintf("Your payment could not be verified: %s. You can start a new payment.", reason),
		KindPayment)
	s.audit("payment.rejected", reviewerID, map[string]interface{}{
		"payment_id": payment.ID.String(),
		"reason":     reason,
	})
	return &payment, nil
}

func (s *PaymentService) Get(ctx context.Context, userID, paymentID uuid.UUID, asAdmin bool) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, "id = ?", paymentID).Error; err != nil {
		return nil, translate(err, "payment", paymentID)
	}
	if !asAdmin && payment.UserID != userID {
		return nil, fmt.Errorf("%w: payment belongs to another user", ErrUnauthorized)
	}
	return &payment, nil
}

func (s *PaymentService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	var list []models.Payment
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&list).Error
	return list, err
}

// ListPending returns pending payments for the review queue. With withProof
// set, only payments that can already be verified are returned.
func (s *PaymentService) ListPending(ctx context.Context, withProof bool) ([]models.Payment, error) {
	q := s.db.WithContext(ctx).Where("payment_status = ?", models.PaymentPending)
	if withProof {
		q = q.Where("payment_proof_url IS NOT NULL AND transaction_id IS NOT NULL")
	}
	var list []models.Payment
	err := q.Order("created_at asc").Find(&list).Error
	return list, err
}
