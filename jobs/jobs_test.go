package jobs

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/database"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu    sync.Mutex
	users []uuid.UUID
}

func (r *recordingNotifier) Notify(userID uuid.UUID, title, message, kind string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
	return nil
}

var jobNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func newRunner(t *testing.T) (*Runner, *recordingNotifier) {
	t.Helper()
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), "silent")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	n := &recordingNotifier{}
	return &Runner{DB: db, Notifier: n, Now: func() time.Time { return jobNow }}, n
}

func seedEnrollment(t *testing.T, db *gorm.DB, status models.EnrollmentStatus) (models.Enrollment, models.Task) {
	t.Helper()
	user := models.User{FullName: "Ivy", Email: uuid.NewString() + "@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	internship := models.Internship{Title: uuid.NewString(), DurationDays: 10, IsActive: true}
	require.NoError(t, db.Create(&internship).Error)
	task := models.Task{InternshipID: internship.ID, TaskNumber: 1, Title: "Hello", Points: 10,
		SubmissionType: models.SubmissionTypeGithub, WaitTimeHours: 24, MaxAttempts: 3, IsActive: true}
	require.NoError(t, db.Create(&task).Error)
	enr := models.Enrollment{UserID: user.ID, InternshipID: internship.ID, CurrentUnlockedTask: 1,
		Status: status, EnrollmentDate: jobNow.Add(-72 * time.Hour)}
	require.NoError(t, db.Create(&enr).Error)
	return enr, task
}

func TestPurgeExpiredOpportunities(t *testing.T) {
	r, _ := newRunner(t)
	used := jobNow.Add(-time.Hour)
	rows := []models.ResubmissionOpportunity{
		{SubmissionID: uuid.New(), EnrollmentID: uuid.New(), TaskID: uuid.New(), AllowedUntil: jobNow.Add(-time.Minute)},
		{SubmissionID: uuid.New(), EnrollmentID: uuid.New(), TaskID: uuid.New(), AllowedUntil: jobNow.Add(time.Hour)},
		{SubmissionID: uuid.New(), EnrollmentID: uuid.New(), TaskID: uuid.New(), AllowedUntil: jobNow.Add(-time.Hour), UsedAt: &used},
	}
	require.NoError(t, r.DB.Create(&rows).Error)

	assert.Equal(t, 1, r.PurgeExpiredOpportunities())
	var left int64
	require.NoError(t, r.DB.Model(&models.ResubmissionOpportunity{}).Count(&left).Error)
	assert.Equal(t, int64(2), left)
	assert.Zero(t, r.PurgeExpiredOpportunities())
}

func TestNotifyElapsedWaitsOnce(t *testing.T) {
	r, n := newRunner(t)
	active, task := seedEnrollment(t, r.DB, models.EnrollmentActive)
	gone, goneTask := seedEnrollment(t, r.DB, models.EnrollmentUnenrolled)

	schedules := []models.TaskUnlockSchedule{
		{EnrollmentID: active.ID, TaskID: task.ID, SubmissionID: uuid.New(), UnlocksAt: jobNow.Add(-time.Minute)},
		{EnrollmentID: active.ID, TaskID: task.ID, SubmissionID: uuid.New(), UnlocksAt: jobNow.Add(time.Hour)},
		{EnrollmentID: gone.ID, TaskID: goneTask.ID, SubmissionID: uuid.New(), UnlocksAt: jobNow.Add(-time.Hour)},
	}
	require.NoError(t, r.DB.Create(&schedules).Error)

	assert.Equal(t, 1, r.NotifyElapsedWaits())
	assert.Equal(t, []uuid.UUID{active.UserID}, n.users)
	assert.Zero(t, r.NotifyElapsedWaits())

	var pending int64
	require.NoError(t, r.DB.Model(&models.TaskUnlockSchedule{}).Where("notified_at IS NULL").Count(&pending).Error)
	assert.Equal(t, int64(1), pending)
}

func TestRemindPendingPayments(t *testing.T) {
	r, n := newRunner(t)
	admin := models.User{FullName: "Ada", Email: "ada@example.com", Password: "x", Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, r.DB.Create(&admin).Error)

	fresh := jobNow.Add(-time.Hour)
	stale := jobNow.Add(-72 * time.Hour)
	payments := []models.Payment{
		{UserID: uuid.New(), PaymentType: models.PaymentTypeCertificate, PaymentStatus: models.PaymentPending, ProofUploadedAt: &fresh},
		{UserID: uuid.New(), PaymentType: models.PaymentTypeCertificate, PaymentStatus: models.PaymentPending, ProofUploadedAt: &stale},
		{UserID: uuid.New(), PaymentType: models.PaymentTypeCertificate, PaymentStatus: models.PaymentPending},
	}
	require.NoError(t, r.DB.Create(&payments).Error)

	assert.Equal(t, 1, r.RemindPendingPayments())
	assert.Equal(t, []uuid.UUID{admin.ID}, n.users)
}

func TestSchedule(t *testing.T) {
	r, _ := newRunner(t)
	c := cron.New()
	require.NoError(t, r.Schedule(c))
	assert.Len(t, c.Entries(), 3)
}
