package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskNumbers(t *testing.T, env *testEnv, internshipID interface{}) map[string]int {
	t.Helper()
	var tasks []models.Task
	require.NoError(t, env.db.Where("internship_id = ?", internshipID).Order("task_number asc").Find(&tasks).Error)
	out := make(map[string]int, len(tasks))
	for _, task := range tasks {
		out[task.Title] = task.TaskNumber
	}
	return out
}

func TestAddTaskNumbersDensely(t *testing.T) {
	env := newTestEnv(t)
	internship, tasks := env.createInternship(t, 75, 10, 20, 30)

	for i, task := range tasks {
		assert.Equal(t, i+1, task.TaskNumber)
	}

	got, err := env.svc.Catalog.GetInternship(context.Background(), internship.ID)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 3)
	assert.Equal(t, 60, MaxScore(got.Tasks))
}

func TestCatalogValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Catalog.CreateInternship(ctx, env.admin.ID, InternshipInput{Title: " ", DurationDays: 10})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.svc.Catalog.CreateInternship(ctx, env.admin.ID, InternshipInput{Title: "Go", DurationDays: 10, PassPercentage: 101})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.svc.Catalog.CreateInternship(ctx, env.admin.ID, InternshipInput{Title: "Go", DurationDays: 10, CertificatePrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrValidation)

	internship, _ := env.createInternship(t, 75)
	_, err = env.svc.Catalog.AddTask(ctx, env.admin.ID, internship.ID, TaskInput{Title: "x", Points: 5, SubmissionType: "VIDEO", MaxAttempts: 1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.svc.Catalog.AddTask(ctx, env.admin.ID, internship.ID, TaskInput{Title: "x", Points: 0, SubmissionType: models.SubmissionTypeForm, MaxAttempts: 1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.svc.Catalog.CreateInternship(ctx, env.admin.ID, InternshipInput{Title: internship.Title, DurationDays: 10})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateInternshipKeepsUnsetFields(t *testing.T) {
	env := newTestEnv(t)
	internship, _ := env.createInternship(t, 75, 10)

	pass := 50.0
	updated, err := env.svc.Catalog.UpdateInternship(context.Background(), env.admin.ID, internship.ID, InternshipPatch{PassPercentage: &pass})
	require.NoError(t, err)
	assert.Equal(t, 50.0, updated.PassPercentage)
	assert.Equal(t, internship.Title, updated.Title)
	assert.Equal(t, 30, updated.DurationDays)
	assert.True(t, updated.CertificatePrice.Equal(decimal.NewFromInt(499)))
	assert.True(t, updated.IsActive)

	list, err := env.svc.Catalog.ListInternships(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDeleteTaskRenumbers(t *testing.T) {
	env := newTestEnv(t)
	internship, tasks := env.createInternship(t, 75, 10, 10, 10, 10)

	require.NoError(t, env.svc.Catalog.DeleteTask(context.Background(), env.admin.ID, tasks[1].ID))
	assert.Equal(t, map[string]int{"Task 1": 1, "Task 3": 2, "Task 4": 3}, taskNumbers(t, env, internship.ID))

	added, err := env.svc.Catalog.AddTask(context.Background(), env.admin.ID, internship.ID, TaskInput{
		Title: "Task 5", Points: 10, SubmissionType: models.SubmissionTypeForm, MaxAttempts: 1, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, added.TaskNumber)
}

func TestDeleteTaskWithSubmissionsConflicts(t *testing.T) {
	env := newTestEnv(t)
	internship, tasks := env.createInternship(t, 75, 10, 10)
	intern := env.createUser(t, "Ivy Intern", models.RoleIntern)
	env.enroll(t, intern, internship)
	_, err := env.submit(intern, tasks[0])
	require.NoError(t, err)

	err = env.svc.Catalog.DeleteTask(context.Background(), env.admin.ID, tasks[0].ID)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, env.svc.Catalog.DeleteTask(context.Background(), env.admin.ID, tasks[1].ID))
}

func TestDeleteInternshipCascades(t *testing.T) {
	env := newTestEnv(t)
	internship, tasks := env.createInternship(t, 75, 10, 10)
	intern := env.createUser(t, "Ivy Intern", models.RoleIntern)
	env.enroll(t, intern, internship)
	env.submitAndApprove(t, intern, tasks[0], nil)

	require.NoError(t, env.svc.Catalog.DeleteInternship(context.Background(), env.admin.ID, internship.ID))

	for _, model := range []interface{}{&models.Task{}, &models.Enrollment{}} {
		var n int64
		require.NoError(t, env.db.Model(model).Where("internship_id = ?", internship.ID).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}
	var subs int64
	require.NoError(t, env.db.Model(&models.Submission{}).Count(&subs).Error)
	assert.Zero(t, subs)

	_, err := env.svc.Catalog.GetInternship(context.Background(), internship.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteInternshipWithPaymentConflicts(t *testing.T) {
	env := newTestEnv(t)
	intern, enr := env.completedEnrollment(t)
	_, err := env.svc.Payments.InitiateCertificatePayment(context.Background(), intern.ID, enr.ID)
	require.NoError(t, err)

	err = env.svc.Catalog.DeleteInternship(context.Background(), env.admin.ID, enr.InternshipID)
	assert.ErrorIs(t, err, ErrConflict)
}

const seedCatalog = `
internships:
  - title: Go Backend
    description: Services in Go
    duration_days: 45
    certificate_price: "799.00"
    pass_percentage: 70
    tasks:
      - title: Hello API
        points: 10
        submission_type: github
        wait_time_hours: 12
      - title: Design quiz
        points: 5
        submission_type: FORM
        max_attempts: 1
  - title: Archived Track
    duration_days: 10
    active: false
`

func TestSeedIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	n, err := env.svc.Catalog.Seed(ctx, []byte(seedCatalog))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = env.svc.Catalog.Seed(ctx, []byte(seedCatalog))
	require.NoError(t, err)
	assert.Zero(t, n)

	active, err := env.svc.Catalog.ListInternships(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	got := active[0]
	assert.Equal(t, "Go Backend", got.Title)
	assert.True(t, got.CertificatePrice.Equal(decimal.RequireFromString("799")))
	require.Len(t, got.Tasks, 2)
	assert.Equal(t, models.SubmissionTypeGithub, got.Tasks[0].SubmissionType)
	assert.Equal(t, 3, got.Tasks[0].MaxAttempts)
	assert.Equal(t, 2, got.Tasks[1].TaskNumber)
	assert.Equal(t, 1, got.Tasks[1].MaxAttempts)

	all, err := env.svc.Catalog.ListInternships(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSeedRejectsBadTask(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Catalog.Seed(context.Background(), []byte(`
internships:
  - title: Broken
    duration_days: 5
    tasks:
      - title: No points
        submission_type: FILE
`))
	assert.ErrorIs(t, err, ErrValidation)
}
