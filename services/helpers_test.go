package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/database"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type sentNotification struct {
	UserID uuid.UUID
	Title  string
	Kind   string
}

// fakeNotifier records every notification. When err is set each delivery
// still gets recorded but reports that error.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (f *fakeNotifier) Notify(userID uuid.UUID, title, message, kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{UserID: userID, Title: title, Kind: kind})
	return f.err
}

func (f *fakeNotifier) failWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeNotifier) kinds(userID uuid.UUID) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, n := range f.sent {
		if n.UserID == userID {
			out = append(out, n.Kind)
		}
	}
	return out
}

type fakeFiles struct {
	mu     sync.Mutex
	stored map[string][]byte
}

func (f *fakeFiles) Store(ctx context.Context, data []byte, category, filename string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stored == nil {
		f.stored = make(map[string][]byte)
	}
	key := category + "/" + filename
	f.stored[key] = data
	return "https://files.test/" + key, nil
}

type fakeAuditor struct {
	mu      sync.Mutex
	actions []string
}

func (f *fakeAuditor) Log(action string, actorID *uuid.UUID, details map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
}

func (f *fakeAuditor) has(action string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.actions {
		if a == action {
			return true
		}
	}
	return false
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	last  CertificateData
}

func (f *fakeRenderer) Render(ctx context.Context, data CertificateData) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = data
	return []byte("%PDF-1.4 " + data.CertificateNumber), nil
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	db       *gorm.DB
	svc      *Services
	notifier *fakeNotifier
	files    *fakeFiles
	auditor  *fakeAuditor
	renderer *fakeRenderer
	clock    *testClock
	admin    models.User
}

var pdfProof = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), "silent")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		db:       newTestDB(t),
		notifier: &fakeNotifier{},
		files:    &fakeFiles{},
		auditor:  &fakeAuditor{},
		renderer: &fakeRenderer{},
		clock:    &testClock{t: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)},
	}
	env.svc = New(env.db, Options{
		Notifier: env.notifier,
		Files:    env.files,
		Auditor:  env.auditor,
		Renderer: env.renderer,
		Now:      env.clock.Now,
	})
	env.admin = env.createUser(t, "Ada Admin", models.RoleAdmin)
	return env
}

func (e *testEnv) createUser(t *testing.T, name, role string) models.User {
	t.Helper()
	u := models.User{
		FullName: name,
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Password: "x",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, e.db.Create(&u).Error)
	return u
}

// createInternship creates an active GITHUB-task internship with one task per
// entry in points.
func (e *testEnv) createInternship(t *testing.T, passPercentage float64, points ...int) (*models.Internship, []models.Task) {
	t.Helper()
	ctx := context.Background()
	internship, err := e.svc.Catalog.CreateInternship(ctx, e.admin.ID, InternshipInput{
		Title:            "Backend " + uuid.NewString()[:6],
		DurationDays:     30,
		CertificatePrice: decimal.NewFromInt(499),
		PassPercentage:   passPercentage,
		IsActive:         true,
	})
	require.NoError(t, err)

	tasks := make([]models.Task, 0, len(points))
	for i, p := range points {
		task, err := e.svc.Catalog.AddTask(ctx, e.admin.ID, internship.ID, TaskInput{
			Title:          fmt.Sprintf("Task %d", i+1),
			Points:         p,
			SubmissionType: models.SubmissionTypeGithub,
			WaitTimeHours:  24,
			MaxAttempts:    3,
			IsActive:       true,
		})
		require.NoError(t, err)
		tasks = append(tasks, *task)
	}
	return internship, tasks
}

func (e *testEnv) enroll(t *testing.T, user models.User, internship *models.Internship) *models.Enrollment {
	t.Helper()
	enr, err := e.svc.Enrollments.Enroll(context.Background(), user.ID, internship.ID)
	require.NoError(t, err)
	return enr
}

func (e *testEnv) submit(user models.User, task models.Task) (*models.Submission, error) {
	return e.svc.Submissions.Submit(context.Background(), user.ID, task.ID, SubmissionPayload{
		GithubURL: "https://github.com/intern/repo-" + task.ID.String()[:8],
	})
}

func (e *testEnv) review(t *testing.T, sub *models.Submission, decision models.SubmissionStatus, score *int) *models.Submission {
	t.Helper()
	out, err := e.svc.Submissions.Review(context.Background(), sub.ID, e.admin.ID, ReviewInput{
		Decision: decision,
		Score:    score,
		Feedback: "looked at it",
	})
	require.NoError(t, err)
	return out
}

func (e *testEnv) submitAndApprove(t *testing.T, user models.User, task models.Task, score *int) *models.Submission {
	t.Helper()
	sub, err := e.submit(user, task)
	require.NoError(t, err)
	return e.review(t, sub, models.SubmissionApproved, score)
}

func (e *testEnv) reloadEnrollment(t *testing.T, id uuid.UUID) models.Enrollment {
	t.Helper()
	var enr models.Enrollment
	require.NoError(t, e.db.First(&enr, "id = ?", id).Error)
	return enr
}

// completedEnrollment returns an intern whose enrollment finished every task
// with full marks.
func (e *testEnv) completedEnrollment(t *testing.T) (models.User, *models.Enrollment) {
	t.Helper()
	internship, tasks := e.createInternship(t, 60, 10, 10)
	intern := e.createUser(t, "Ivy Intern", models.RoleIntern)
	enr := e.enroll(t, intern, internship)
	for _, task := range tasks {
		e.submitAndApprove(t, intern, task, nil)
	}
	return intern, enr
}

func intPtr(v int) *int { return &v }
