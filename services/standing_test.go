package services

import (
	"testing"

	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"github.com/stretchr/testify/assert"
)

func tasksOf(points ...int) []models.Task {
	tasks := make([]models.Task, len(points))
	for i, p := range points {
		tasks[i] = models.Task{TaskNumber: i + 1, Points: p, IsActive: true}
	}
	return tasks
}

func TestEvaluateStanding(t *testing.T) {
	internship := models.Internship{PassPercentage: 75}
	tasks := tasksOf(10, 10, 10)

	cases := []struct {
		name     string
		enr      models.Enrollment
		passed   bool
		eligible bool
		wantPct  float64
	}{
		{"in progress", models.Enrollment{FinalScore: 30}, true, false, 100},
		{"below pass mark", models.Enrollment{FinalScore: 20, IsCompleted: true}, false, false, 66.667},
		{"exactly at pass mark", models.Enrollment{FinalScore: 30, IsCompleted: true}, true, true, 100},
		{"already purchased", models.Enrollment{FinalScore: 30, IsCompleted: true, CertificatePurchased: true}, true, false, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := EvaluateStanding(tc.enr, internship, tasks)
			assert.Equal(t, 30, s.MaxScore)
			assert.InDelta(t, tc.wantPct, s.Percentage, 0.01)
			assert.Equal(t, tc.passed, s.Passed)
			assert.Equal(t, tc.eligible, s.Eligible)
			assert.Equal(t, tc.eligible, IsEligibleForCertificate(tc.enr, internship, tasks))
		})
	}
}

func TestStandingPassMarkBoundary(t *testing.T) {
	internship := models.Internship{PassPercentage: 75}
	s := EvaluateStanding(models.Enrollment{FinalScore: 15, IsCompleted: true}, internship, tasksOf(10, 10))
	assert.True(t, s.Eligible)
}

func TestMaxScoreSkipsInactiveTasks(t *testing.T) {
	tasks := tasksOf(10, 20, 30)
	tasks[1].IsActive = false
	assert.Equal(t, 40, MaxScore(tasks))
	assert.Equal(t, 3, highestActiveTaskNumber(tasks))

	tasks[2].IsActive = false
	assert.Equal(t, 1, highestActiveTaskNumber(tasks))
	assert.Zero(t, Percentage(5, 0))
}

func TestReachableFromCursor(t *testing.T) {
	tasks := tasksOf(10, 10, 10, 10)
	assert.True(t, reachableFromCursor(1, 1, tasks))
	assert.False(t, reachableFromCursor(2, 1, tasks))
	assert.True(t, reachableFromCursor(2, 3, tasks))

	tasks[1].IsActive = false
	tasks[2].IsActive = false
	assert.True(t, reachableFromCursor(4, 2, tasks))
	assert.False(t, reachableFromCursor(4, 1, tasks))
}

func TestNoActiveTasksNeverPasses(t *testing.T) {
	s := EvaluateStanding(models.Enrollment{IsCompleted: true}, models.Internship{PassPercentage: 0}, nil)
	assert.False(t, s.Passed)
	assert.False(t, s.Eligible)
}
