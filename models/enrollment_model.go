package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentStatus string

const (
	EnrollmentActive     EnrollmentStatus = "ACTIVE"
	EnrollmentCompleted  EnrollmentStatus = "COMPLETED"
	EnrollmentUnenrolled EnrollmentStatus = "UNENROLLED"
)

type Enrollment struct {
	ID                   uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_user_internship" json:"user_id"`
	InternshipID         uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_user_internship;index" json:"internship_id"`
	CurrentUnlockedTask  int              `gorm:"not null" json:"current_unlocked_task"`
	Status               EnrollmentStatus `gorm:"size:20;not null" json:"status"`
	FinalScore           int              `gorm:"not null" json:"final_score"`
	IsCompleted          bool             `gorm:"not null" json:"is_completed"`
	CertificatePurchased bool             `gorm:"not null" json:"certificate_purchased"`
	EnrollmentDate       time.Time        `gorm:"not null" json:"enrollment_date"`
	CompletionDate       *time.Time       `json:"completion_date,omitempty"`
	UnenrollmentDate     *time.Time       `json:"unenrollment_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	assignID(&e.ID)
	return nil
}
