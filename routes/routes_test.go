package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/database"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/handlers"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/notifications"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/services"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

const (
	adminEmail    = "admin@portal.test"
	adminPassword = "admin-secret"
)

type testApp struct {
	t   *testing.T
	app *fiber.App
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), "silent")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedAdmin(db, adminEmail, adminPassword, "Ada Admin"))

	hub := websocket.NewHub()
	dispatcher := &notifications.Dispatcher{DB: db, Pusher: hub}
	auditor := services.DBAuditor{DB: db}
	svc := services.New(db, services.Options{
		Notifier: dispatcher,
		Files:    services.LocalStore{Dir: t.TempDir(), BaseURL: "http://localhost/uploads"},
		Auditor:  auditor,
	})

	app := fiber.New()
	Register(app, &handlers.Handler{
		DB:            db,
		Services:      svc,
		Notifications: dispatcher,
		Hub:           hub,
		Auditor:       auditor,
		JWTSecret:     "test-secret",
	})
	return &testApp{t: t, app: app}
}

func (a *testApp) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(a.t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func (a *testApp) upload(path, token, field, filename string, data []byte, fields map[string]string) (int, map[string]interface{}) {
	a.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile(field, filename)
	require.NoError(a.t, err)
	_, err = part.Write(data)
	require.NoError(a.t, err)
	require.NoError(a.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (a *testApp) login(email, password string) string {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, status, body)
	return body["token"].(string)
}

func (a *testApp) registerIntern(name, email string) string {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"full_name": name, "email": email, "password": "secret123",
	})
	require.Equal(a.t, http.StatusCreated, status, body)
	return a.login(email, "secret123")
}

func TestRegisterAndLogin(t *testing.T) {
	a := newTestApp(t)
	a.registerIntern("Ivy Intern", "ivy@example.com")

	status, _ := a.do(http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"full_name": "Ivy Again", "email": "IVY@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = a.do(http.MethodPost, "/api/v1/auth/register", "", fiber.Map{"full_name": "No", "email": "bad"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = a.do(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": "ivy@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthenticationGates(t *testing.T) {
	a := newTestApp(t)
	intern := a.registerIntern("Ivy Intern", "ivy@example.com")

	status, _ := a.do(http.MethodGet, "/api/v1/internships", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = a.do(http.MethodGet, "/api/v1/internships", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = a.do(http.MethodGet, "/api/v1/internships", intern, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = a.do(http.MethodGet, "/api/v1/admin/users", intern, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = a.do(http.MethodGet, "/api/v1/verify/certificates/INT-2025-0000000000", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeactivatedUserIsRejected(t *testing.T) {
	a := newTestApp(t)
	intern := a.registerIntern("Ivy Intern", "ivy@example.com")
	admin := a.login(adminEmail, adminPassword)

	status, body := a.do(http.MethodGet, "/api/v1/profile", intern, nil)
	require.Equal(t, http.StatusOK, status)
	internID := body["id"].(string)

	status, _ = a.do(http.MethodPut, "/api/v1/admin/users/"+internID+"/status", admin, fiber.Map{"is_active": false})
	require.Equal(t, http.StatusOK, status)

	status, _ = a.do(http.MethodGet, "/api/v1/profile", intern, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = a.do(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": "ivy@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSubmissionWorkflowOverHTTP(t *testing.T) {
	a := newTestApp(t)
	admin := a.login(adminEmail, adminPassword)
	intern := a.registerIntern("Ivy Intern", "ivy@example.com")

	status, body := a.do(http.MethodPost, "/api/v1/admin/internships", admin, fiber.Map{
		"title": "Go Backend", "duration_days": 30, "certificate_price": "499", "pass_percentage": 60,
	})
	require.Equal(t, http.StatusCreated, status, body)
	internshipID := body["id"].(string)

	taskIDs := make([]string, 0, 2)
	for i := 1; i <= 2; i++ {
		status, body = a.do(http.MethodPost, "/api/v1/admin/internships/"+internshipID+"/tasks", admin, fiber.Map{
			"title": fmt.Sprintf("Task %d", i), "points": 10, "submission_type": "GITHUB", "wait_time_hours": 24,
		})
		require.Equal(t, http.StatusCreated, status, body)
		assert.Equal(t, float64(i), body["task_number"])
		assert.Equal(t, float64(3), body["max_attempts"])
		taskIDs = append(taskIDs, body["id"].(string))
	}

	status, _ = a.do(http.MethodPost, "/api/v1/admin/internships", intern, fiber.Map{"title": "Nope", "duration_days": 1})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = a.do(http.MethodPost, "/api/v1/internships/"+internshipID+"/enroll", intern, nil)
	require.Equal(t, http.StatusCreated, status, body)
	enrollmentID := body["id"].(string)
	status, _ = a.do(http.MethodPost, "/api/v1/internships/"+internshipID+"/enroll", intern, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = a.do(http.MethodPost, "/api/v1/tasks/"+taskIDs[1]+"/submissions", intern, fiber.Map{"github_url": "https://github.com/ivy/two"})
	assert.Equal(t, http.StatusLocked, status)
	status, _ = a.do(http.MethodPost, "/api/v1/tasks/"+taskIDs[0]+"/submissions", intern, fiber.Map{"github_url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = a.do(http.MethodPost, "/api/v1/tasks/not-a-uuid/submissions", intern, fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = a.do(http.MethodPost, "/api/v1/tasks/"+taskIDs[0]+"/submissions", intern, fiber.Map{"github_url": "https://github.com/ivy/one"})
	require.Equal(t, http.StatusCreated, status, body)
	submissionID := body["id"].(string)

	status, _ = a.do(http.MethodPost, "/api/v1/admin/submissions/"+submissionID+"/review", admin, fiber.Map{"decision": "MAYBE"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, body = a.do(http.MethodPost, "/api/v1/admin/submissions/"+submissionID+"/review", admin, fiber.Map{"decision": "APPROVED", "score": 8})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "APPROVED", body["status"])
	status, _ = a.do(http.MethodPost, "/api/v1/admin/submissions/"+submissionID+"/review", admin, fiber.Map{"decision": "REJECTED"})
	assert.Equal(t, http.StatusConflict, status)

	status, body = a.do(http.MethodGet, "/api/v1/enrollments/"+enrollmentID, intern, nil)
	require.Equal(t, http.StatusOK, status)
	enrollment := body["enrollment"].(map[string]interface{})
	assert.Equal(t, float64(2), enrollment["current_unlocked_task"])
	assert.Equal(t, float64(8), enrollment["final_score"])

	status, _ = a.do(http.MethodPost, "/api/v1/enrollments/"+enrollmentID+"/certificate-payment", intern, nil)
	assert.Equal(t, http.StatusConflict, status)

	other := a.registerIntern("Olive Other", "olive@example.com")
	status, _ = a.do(http.MethodGet, "/api/v1/enrollments/"+enrollmentID, other, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = a.do(http.MethodGet, "/api/v1/admin/enrollments/"+enrollmentID, admin, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = a.do(http.MethodGet, "/api/v1/notifications", intern, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestFileTaskSubmissionOverHTTP(t *testing.T) {
	a := newTestApp(t)
	admin := a.login(adminEmail, adminPassword)
	intern := a.registerIntern("Ivy Intern", "ivy@example.com")

	status, body := a.do(http.MethodPost, "/api/v1/admin/internships", admin, fiber.Map{
		"title": "Data Reports", "duration_days": 20, "certificate_price": "299", "pass_percentage": 50,
	})
	require.Equal(t, http.StatusCreated, status, body)
	internshipID := body["id"].(string)
	status, body = a.do(http.MethodPost, "/api/v1/admin/internships/"+internshipID+"/tasks", admin, fiber.Map{
		"title": "Quarterly report", "points": 10, "submission_type": "FILE",
	})
	require.Equal(t, http.StatusCreated, status, body)
	taskID := body["id"].(string)

	status, _ = a.do(http.MethodPost, "/api/v1/internships/"+internshipID+"/enroll", intern, nil)
	require.Equal(t, http.StatusCreated, status)

	status, _ = a.do(http.MethodPost, "/api/v1/tasks/"+taskID+"/submissions", intern, fiber.Map{
		"file_url": "https://evil.example/report.pdf",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = a.upload("/api/v1/tasks/"+taskID+"/submissions/file", intern, "file", "report.pdf",
		[]byte("%PDF-1.4\n%%EOF\n"), map[string]string{"notes": "Q3 numbers"})
	require.Equal(t, http.StatusCreated, status, body)
	payload := body["payload"].(map[string]interface{})
	assert.True(t, strings.HasPrefix(payload["file_url"].(string), "http://localhost/uploads/submissions/"), payload)
	assert.Equal(t, "PENDING", body["status"])
}
