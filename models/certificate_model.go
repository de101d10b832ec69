package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CertificateSession is the issued certificate of one enrollment. It only
// exists once a certificate payment has been verified.
type CertificateSession struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EnrollmentID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"enrollment_id"`
	PaymentID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"payment_id"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	InternshipID      uuid.UUID `gorm:"type:uuid;not null;index" json:"internship_id"`
	CertificateNumber string    `gorm:"size:40;not null;uniqueIndex" json:"certificate_number"`
	HolderName        string    `gorm:"size:255;not null" json:"holder_name"`
	InternshipTitle   string    `gorm:"size:255;not null" json:"internship_title"`
	FinalScore        int       `gorm:"not null" json:"final_score"`
	MaxScore          int       `gorm:"not null" json:"max_score"`
	Percentage        float64   `gorm:"not null" json:"percentage"`
	IssuedAt          time.Time `gorm:"not null" json:"issued_at"`
	CertificateURL    *string   `gorm:"type:text" json:"certificate_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *CertificateSession) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

type ValidationStatus string

const (
	ValidationPending   ValidationStatus = "PENDING"
	ValidationValidated ValidationStatus = "VALIDATED"
	ValidationRejected  ValidationStatus = "REJECTED"
)

// CertificateValidation is a scan of a printed certificate sent back for
// re-validation against its session.
type CertificateValidation struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"session_id"`
	UserID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	FileURL    string           `gorm:"type:text;not null" json:"file_url"`
	Status     ValidationStatus `gorm:"size:20;not null" json:"status"`
	Notes      *string          `gorm:"type:text" json:"notes,omitempty"`
	ReviewedBy *uuid.UUID       `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time       `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *CertificateValidation) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}
