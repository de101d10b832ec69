package services

import (
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
)

// Standing is the score picture of one enrollment. It is derived on every read
// and never stored.
type Standing struct {
	FinalScore     int     `json:"final_score"`
	MaxScore       int     `json:"max_score"`
	Percentage     float64 `json:"percentage"`
	PassPercentage float64 `json:"pass_percentage"`
	Passed         bool    `json:"passed"`
	Eligible       bool    `json:"eligible_for_certificate"`
}

// MaxScore sums the points of the active tasks.
func MaxScore(tasks []models.Task) int {
	total := 0
	for _, t := range tasks {
		if t.IsActive {
			total += t.Points
		}
	}
	return total
}

func Percentage(finalScore, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	return float64(finalScore) / float64(maxScore) * 100
}

func EvaluateStanding(enrollment models.Enrollment, internship models.Internship, tasks []models.Task) Standing {
	maxScore := MaxScore(tasks)
	pct := Percentage(enrollment.FinalScore, maxScore)
	passed := maxScore > 0 && pct >= internship.PassPercentage

	return Standing{
		FinalScore:     enrollment.FinalScore,
		MaxScore:       maxScore,
		Percentage:     pct,
		PassPercentage: internship.PassPercentage,
		Passed:         passed,
		Eligible:       enrollment.IsCompleted && passed && !enrollment.CertificatePurchased,
	}
}

// IsEligibleForCertificate is true when the enrollment is completed, the score
// reaches the pass mark and no certificate has been bought yet.
func IsEligibleForCertificate(enrollment models.Enrollment, internship models.Internship, tasks []models.Task) bool {
	return EvaluateStanding(enrollment, internship, tasks).Eligible
}

// highestActiveTaskNumber returns 0 when the internship has no active task.
func highestActiveTaskNumber(tasks []models.Task) int {
	highest := 0
	for _, t := range tasks {
		if t.IsActive && t.TaskNumber > highest {
			highest = t.TaskNumber
		}
	}
	return highest
}

// reachableFromCursor reports whether a task number can be worked on given the
// unlock cursor. Inactive tasks between the cursor and the number do not block.
func reachableFromCursor(number, cursor int, tasks []models.Task) bool {
	if number <= cursor {
		return true
	}
	for _, t := range tasks {
		if t.IsActive && t.TaskNumber >= cursor && t.TaskNumber < number {
			return false
		}
	}
	return true
}
