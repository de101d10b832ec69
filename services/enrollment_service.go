package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentService struct {
	*core
}

type TaskState string

const (
	TaskLocked       TaskState = "LOCKED"
	TaskUnlocked     TaskState = "UNLOCKED"
	TaskPending      TaskState = "PENDING"
	TaskApproved     TaskState = "APPROVED"
	TaskRejected     TaskState = "REJECTED"
	TaskResubmitOpen TaskState = "RESUBMIT_OPEN"
	TaskInactive     TaskState = "INACTIVE"
)

type TaskProgress struct {
	TaskID           uuid.UUID             `json:"task_id"`
	TaskNumber       int                   `json:"task_number"`
	Title            string                `json:"title"`
	Points           int                   `json:"points"`
	SubmissionType   models.SubmissionType `json:"submission_type"`
	State            TaskState             `json:"state"`
	AttemptsUsed     int                   `json:"attempts_used"`
	MaxAttempts      int                   `json:"max_attempts"`
	LatestSubmission *models.Submission    `json:"latest_submission,omitempty"`
	ResubmitUntil    *time.Time            `json:"resubmit_until,omitempty"`
}

type Progress struct {
	Enrollment      models.Enrollment `json:"enrollment"`
	InternshipTitle string            `json:"internship_title"`
	Tasks           []TaskProgress    `json:"tasks"`
	Standing        Standing          `json:"standing"`
	NextUnlockAt    *time.Time        `json:"next_unlock_at,omitempty"`
}

func (s *EnrollmentService) Enroll(ctx context.Context, userID, internshipID uuid.UUID) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	var internship models.Internship
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&internship, "id = ?", internshipID).Error; err != nil {
			return translate(err, "internship", internshipID)
		}
		if !internship.IsActive {
			return conflict("internship %q is not accepting enrollments", internship.Title)
		}

		var existing int64
		if err := tx.Model(&models.Enrollment{}).
			Where("user_id = ? AND internship_id = ?", userID, internshipID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: internship %s", ErrAlreadyEnrolled, internshipID)
		}

		enrollment = models.Enrollment{
			UserID:              userID,
			InternshipID:        internshipID,
			CurrentUnlockedTask: 1,
			Status:              models.EnrollmentActive,
			EnrollmentDate:      s.now(),
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: internship %s", ErrAlreadyEnrolled, internshipID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(userID, "Enrollment confirmed", fmt.Sprintf("You are now enrolled in %s. Task 1 is unlocked.", internship.Title), KindEnrollment)
	s.audit("enrollment.created", userID, map[string]interface{}{
		"enrollment_id": enrollment.ID.String(),
		"internship_id": internshipID.String(),
	})
	return &enrollment, nil
}

// Unenroll deletes the enrollment with all its submissions. It cannot be undone;
// the returned value is the removed record stamped UNENROLLED.
func (s *EnrollmentService) Unenroll(ctx context.Context, userID, enrollmentID uuid.UUID) (*models.Enrollment, error) {
	now := s.now()
	var enrollment models.Enrollment
	var rejected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&enrollment, "id = ?", enrollmentID).Error; err != nil {
			return translate(err, "enrollment", enrollmentID)
		}
		if enrollment.UserID != userID {
			return fmt.Errorf("%w: enrollment belongs to another user", ErrUnauthorized)
		}

		var sessions int64
		if err := tx.Model(&models.CertificateSession{}).Where("enrollment_id = ?", enrollmentID).Count(&sessions).Error; err != nil {
			return err
		}
		if enrollment.CertificatePurchased || sessions > 0 {
			return conflict("a certificate was already issued for this enrollment")
		}

		reason := "enrollment removed"
		res := tx.Model(&models.Payment{}).
			Where("enrollment_id = ? AND payment_status = ?", enrollmentID, models.PaymentPending).
			Updates(map[string]interface{}{
				"payment_status":   models.PaymentRejected,
				"rejection_reason": reason,
				"reviewed_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		rejected = res.RowsAffected

		if err := tx.Model(&models.Payment{}).Where("enrollment_id = ?", enrollmentID).
			Update("enrollment_id", nil).Error; err != nil {
			return err
		}
		return deleteEnrollmentsCascade(tx, []uuid.UUID{enrollmentID})
	})
	if err != nil {
		return nil, err
	}

	enrollment.Status = models.EnrollmentUnenrolled
	enrollment.UnenrollmentDate = &now

	s.audit("enrollment.removed", userID, map[string]interface{}{
		"enrollment_id":     enrollmentID.String(),
		"internship_id":     enrollment.InternshipID.String(),
		"final_score":       enrollment.FinalScore,
		"rejected_payments": rejected,
	})
	return &enrollment, nil
}

func (s *EnrollmentService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("enrollment_date desc").Find(&enrollments).Error
	return enrollments, err
}

// loadOwnedEnrollment fetches an enrollment and checks that it belongs to the
// caller unless the caller is an admin.
func loadOwnedEnrollment(tx *gorm.DB, userID, enrollmentID uuid.UUID, asAdmin bool) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := tx.First(&enrollment, "id = ?", enrollmentID).Error; err != nil {
		return nil, translate(err, "enrollment", enrollmentID)
	}
	if !asAdmin && enrollment.UserID != userID {
		return nil, fmt.Errorf("%w: enrollment belongs to another user", ErrUnauthorized)
	}
	return &enrollment, nil
}

func (s *EnrollmentService) GetProgress(ctx context.Context, userID, enrollmentID uuid.UUID, asAdmin bool) (*Progress, error) {
	db := s.db.WithContext(ctx)
	enrollment, err := loadOwnedEnrollment(db, userID, enrollmentID, asAdmin)
	if err != nil {
		return nil, err
	}

	var internship models.Internship
	if err := db.First(&internship, "id = ?", enrollment.InternshipID).Error; err != nil {
		return nil, translate(err, "internship", enrollment.InternshipID)
	}
	tasks, err := loadTasks(db, internship.ID)
	if err != nil {
		return nil, err
	}

	var submissions []models.Submission
	if err := db.Where("enrollment_id = ?", enrollmentID).Order("attempt_number asc").Find(&submissions).Error; err != nil {
		return nil, err
	}
	var opportunities []models.ResubmissionOpportunity
	if err := db.Where("enrollment_id = ? AND used_at IS NULL", enrollmentID).Find(&opportunities).Error; err != nil {
		return nil, err
	}
	var schedules []models.TaskUnlockSchedule
	if err := db.Where("enrollment_id = ?", enrollmentID).Find(&schedules).Error; err != nil {
		return nil, err
	}

	now := s.now()
	byTask := make(map[uuid.UUID][]models.Submission)
	for _, sub := range submissions {
		byTask[sub.TaskID] = append(byTask[sub.TaskID], sub)
	}
	openUntil := make(map[uuid.UUID]time.Time)
	for _, o := range opportunities {
		if o.OpenAt(now) && o.AllowedUntil.After(openUntil[o.TaskID]) {
			openUntil[o.TaskID] = o.AllowedUntil
		}
	}

	progress := &Progress{
		Enrollment:      *enrollment,
		InternshipTitle: internship.Title,
		Standing:        EvaluateStanding(*enrollment, internship, tasks),
	}
	for _, t := range tasks {
		attempts := byTask[t.ID]
		tp := TaskProgress{
			TaskID:         t.ID,
			TaskNumber:     t.TaskNumber,
			Title:          t.Title,
			Points:         t.Points,
			SubmissionType: t.SubmissionType,
			AttemptsUsed:   len(attempts),
			MaxAttempts:    t.MaxAttempts,
		}
		if len(attempts) > 0 {
			latest := attempts[len(attempts)-1]
			tp.LatestSubmission = &latest
		}
		until, open := openUntil[t.ID]
		if open {
			tp.ResubmitUntil = &until
		}
		tp.State = taskState(t, enrollment.CurrentUnlockedTask, tasks, attempts, open)
		progress.Tasks = append(progress.Tasks, tp)
	}

	for _, sc := range schedules {
		if sc.UnlocksAt.After(now) && (progress.NextUnlockAt == nil || sc.UnlocksAt.Before(*progress.NextUnlockAt)) {
			at := sc.UnlocksAt
			progress.NextUnlockAt = &at
		}
	}
	return progress, nil
}

func taskState(t models.Task, cursor int, tasks []models.Task, attempts []models.Submission, resubmitOpen bool) TaskState {
	if !t.IsActive {
		return TaskInactive
	}
	if len(attempts) == 0 {
		if reachableFromCursor(t.TaskNumber, cursor, tasks) {
			return TaskUnlocked
		}
		return TaskLocked
	}
	for _, a := range attempts {
		if a.Status == models.SubmissionApproved {
			return TaskApproved
		}
	}
	switch attempts[len(attempts)-1].Status {
	case models.SubmissionPending:
		return TaskPending
	default:
		if resubmitOpen && len(attempts) < t.MaxAttempts {
			return TaskResubmitOpen
		}
		return TaskRejected
	}
}
