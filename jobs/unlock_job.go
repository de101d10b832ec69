package jobs

import (
	"fmt"
	"log"

	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/services"
)

// NotifyElapsedWaits tells interns when the suggested wait after a submission
// is over. The wait is advisory and never blocks a submission.
func (r *Runner) NotifyElapsedWaits() int {
	log.Println("Running job: NotifyElapsedWaits...")
	now := r.now()

	var schedules []models.TaskUnlockSchedule
	if err := r.DB.Where("notified_at IS NULL").Find(&schedules).Error; err != nil {
		log.Printf("Error loading unlock schedules: %v", err)
		return 0
	}

	sent := 0
	for _, sc := range schedules {
		if sc.UnlocksAt.After(now) {
			continue
		}

		var enrollment models.Enrollment
		if err := r.DB.First(&enrollment, "id = ?", sc.EnrollmentID).Error; err != nil {
			continue
		}
		var task models.Task
		if err := r.DB.First(&task, "id = ?", sc.TaskID).Error; err != nil {
			continue
		}

		// Claim the row first so overlapping runs notify once.
		res := r.DB.Model(&models.TaskUnlockSchedule{}).
			Where("id = ? AND notified_at IS NULL", sc.ID).
			Update("notified_at", now)
		if res.Error != nil || res.RowsAffected == 0 {
			continue
		}

		if enrollment.Status != models.EnrollmentActive || r.Notifier == nil {
			continue
		}
		msg := fmt.Sprintf("The wait after your task %d (%s) submission is over. Check your progress for the next step.", task.TaskNumber, task.Title)
		if err := r.Notifier.Notify(enrollment.UserID, "Next task reminder", msg, services.KindSubmission); err != nil {
			log.Printf("⚠️ Failed to notify user %s: %v", enrollment.UserID, err)
			continue
		}
		sent++
	}
	if sent > 0 {
		log.Printf("Sent %d unlock reminder(s).", sent)
	}
	return sent
}
