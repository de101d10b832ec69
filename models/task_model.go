package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubmissionType string

const (
	SubmissionTypeGithub SubmissionType = "GITHUB"
	SubmissionTypeForm   SubmissionType = "FORM"
	SubmissionTypeFile   SubmissionType = "FILE"
)

func (t SubmissionType) Valid() bool {
	switch t {
	case SubmissionTypeGithub, SubmissionTypeForm, SubmissionTypeFile:
		return true
	}
	return false
}

// Task numbers are dense (1..N) per internship; the number is the unlock order.
type Task struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	InternshipID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_internship_task_number" json:"internship_id"`
	TaskNumber     int            `gorm:"not null;uniqueIndex:idx_internship_task_number" json:"task_number"`
	Title          string         `gorm:"size:255;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Points         int            `gorm:"not null" json:"points"`
	SubmissionType SubmissionType `gorm:"size:10;not null" json:"submission_type"`
	WaitTimeHours  int            `gorm:"not null" json:"wait_time_hours"`
	MaxAttempts    int            `gorm:"not null" json:"max_attempts"`
	IsActive       bool           `gorm:"not null" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}
