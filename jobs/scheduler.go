package jobs

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/services"
	"gorm.io/gorm"
)

// Runner holds what the periodic jobs share.
type Runner struct {
	DB       *gorm.DB
	Notifier services.Notifier
	Now      func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// Schedule registers every job on c. The caller starts and stops c.
func (r *Runner) Schedule(c *cron.Cron) error {
	specs := []struct {
		spec string
		name string
		fn   func()
	}{
		{"@hourly", "PurgeExpiredOpportunities", func() { r.PurgeExpiredOpportunities() }},
		{"*/15 * * * *", "NotifyElapsedWaits", func() { r.NotifyElapsedWaits() }},
		{"0 9 * * *", "RemindPendingPayments", func() { r.RemindPendingPayments() }},
	}
	for _, s := range specs {
		if _, err := c.AddFunc(s.spec, s.fn); err != nil {
			return err
		}
		log.Printf("✅ Cron job %s scheduled (%s)", s.name, s.spec)
	}
	return nil
}
