package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentType string

const (
	PaymentTypeCertificate PaymentType = "CERTIFICATE"
	PaymentTypePaidTask    PaymentType = "PAID_TASK"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentVerified PaymentStatus = "VERIFIED"
	PaymentRejected PaymentStatus = "REJECTED"
)

// Payment is a manually reconciled transfer. The intern supplies the
// transaction id and a proof file, an admin verifies or rejects it.
type Payment struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	InternshipID *uuid.UUID `gorm:"type:uuid;index" json:"internship_id,omitempty"`
	EnrollmentID *uuid.UUID `gorm:"type:uuid;index" json:"enrollment_id,omitempty"`
	PaidTaskID   *uuid.UUID `gorm:"type:uuid" json:"paid_task_id,omitempty"`

	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	PaymentType   PaymentType     `gorm:"size:20;not null" json:"payment_type"`
	PaymentStatus PaymentStatus   `gorm:"size:20;not null;index" json:"payment_status"`

	TransactionID         *string    `gorm:"size:255" json:"transaction_id,omitempty"`
	PaymentProofURL       *string    `gorm:"type:text" json:"payment_proof_url,omitempty"`
	ProofUploadedAt       *time.Time `json:"proof_uploaded_at,omitempty"`
	VerifiedTransactionID *string    `gorm:"size:255" json:"verified_transaction_id,omitempty"`
	VerifiedAt            *time.Time `json:"verified_at,omitempty"`
	ReviewedBy            *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt            *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason       *string    `gorm:"type:text" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// HasProof reports whether both manual-verification artifacts are present.
func (p Payment) HasProof() bool {
	return p.TransactionID != nil && *p.TransactionID != "" &&
		p.PaymentProofURL != nil && *p.PaymentProofURL != ""
}
