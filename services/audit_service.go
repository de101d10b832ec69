package services

import (
	"log"

	"github.com/google/uuid"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DBAuditor stores audit entries in the audit_logs table from a goroutine so
// workflow calls never wait on it.
type DBAuditor struct {
	DB *gorm.DB
}

func (a DBAuditor) Log(action string, actorID *uuid.UUID, details map[string]interface{}) {
	go func() {
		if err := a.write(action, actorID, details); err != nil {
			log.Printf("⚠️ Failed to write audit log %q: %v", action, err)
		}
	}()
}

func (a DBAuditor) write(action string, actorID *uuid.UUID, details map[string]interface{}) error {
	entry := models.AuditLog{
		Action:  action,
		ActorID: actorID,
		Details: datatypes.JSONMap(details),
	}
	return a.DB.Create(&entry).Error
}

// ListRecent returns the latest audit entries, newest first.
func (a DBAuditor) ListRecent(limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entries []models.AuditLog
	err := a.DB.Order("created_at desc").Limit(limit).Find(&entries).Error
	return entries, err
}
