package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditLog struct {
	ID      uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Action  string            `gorm:"size:80;not null;index" json:"action"`
	ActorID *uuid.UUID        `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Details datatypes.JSONMap `json:"details"`

	CreatedAt time.Time `json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}
