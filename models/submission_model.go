package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "PENDING"
	SubmissionApproved SubmissionStatus = "APPROVED"
	SubmissionRejected SubmissionStatus = "REJECTED"
)

// Submission is one attempt at a task; a resubmission is a new row.
type Submission struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	EnrollmentID     uuid.UUID         `gorm:"type:uuid;not null;index:idx_submission_enrollment_task" json:"enrollment_id"`
	TaskID           uuid.UUID         `gorm:"type:uuid;not null;index:idx_submission_enrollment_task" json:"task_id"`
	UserID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	AttemptNumber    int               `gorm:"not null" json:"attempt_number"`
	Status           SubmissionStatus  `gorm:"size:20;not null;index" json:"status"`
	Payload          datatypes.JSONMap `json:"payload"`
	Score            int               `gorm:"not null" json:"score"`
	AdminFeedback    *string           `gorm:"type:text" json:"admin_feedback,omitempty"`
	ReviewedAt       *time.Time        `json:"reviewed_at,omitempty"`
	ReviewedBy       *uuid.UUID        `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	NextTaskUnlocked bool              `gorm:"not null" json:"next_task_unlocked"`
	SubmittedAt      time.Time         `gorm:"not null" json:"submitted_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// ResubmissionOpportunity reopens a rejected task until AllowedUntil.
type ResubmissionOpportunity struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EnrollmentID uuid.UUID  `gorm:"type:uuid;not null;index:idx_resubmission_enrollment_task" json:"enrollment_id"`
	TaskID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_resubmission_enrollment_task" json:"task_id"`
	SubmissionID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"submission_id"`
	AllowedUntil time.Time  `gorm:"not null;index" json:"allowed_until"`
	UsedAt       *time.Time `json:"used_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (r *ResubmissionOpportunity) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}

func (r ResubmissionOpportunity) OpenAt(now time.Time) bool {
	return r.UsedAt == nil && now.Before(r.AllowedUntil)
}

// TaskUnlockSchedule is advisory: it records when the task after a submission
// is expected to open, it never approves anything by itself.
type TaskUnlockSchedule struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EnrollmentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"enrollment_id"`
	TaskID       uuid.UUID  `gorm:"type:uuid;not null" json:"task_id"`
	SubmissionID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"submission_id"`
	UnlocksAt    time.Time  `gorm:"not null;index" json:"unlocks_at"`
	NotifiedAt   *time.Time `json:"notified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (u *TaskUnlockSchedule) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}
