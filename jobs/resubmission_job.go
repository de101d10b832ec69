package jobs

import (
	"log"

	"github.com/google/uuid"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
)

// PurgeExpiredOpportunities deletes resubmission windows that closed without
// being used. Used windows are kept as history.
func (r *Runner) PurgeExpiredOpportunities() int {
	log.Println("Running job: PurgeExpiredOpportunities...")
	now := r.now()

	var open []models.ResubmissionOpportunity
	if err := r.DB.Where("used_at IS NULL").Find(&open).Error; err != nil {
		log.Printf("Error loading resubmission windows: %v", err)
		return 0
	}

	var expired []uuid.UUID
	for _, o := range open {
		if !o.AllowedUntil.After(now) {
			expired = append(expired, o.ID)
		}
	}
	if len(expired) == 0 {
		return 0
	}

	res := r.DB.Where("id IN ? AND used_at IS NULL", expired).Delete(&models.ResubmissionOpportunity{})
	if res.Error != nil {
		log.Printf("Error purging resubmission windows: %v", res.Error)
		return 0
	}
	log.Printf("Purged %d expired resubmission window(s).", res.RowsAffected)
	return int(res.RowsAffected)
}
