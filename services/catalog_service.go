package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogService struct {
	*core
}

type InternshipInput struct {
	Title            string
	Description      string
	DurationDays     int
	CertificatePrice decimal.Decimal
	PassPercentage   float64
	IsActive         bool
}

// InternshipPatch carries the fields an admin edit wants to change. A nil
// field keeps the stored value.
type InternshipPatch struct {
	Title            *string
	Description      *string
	DurationDays     *int
	CertificatePrice *decimal.Decimal
	PassPercentage   *float64
	IsActive         *bool
}

func (p InternshipPatch) Apply(in *models.Internship) {
	if p.Title != nil {
		in.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.DurationDays != nil {
		in.DurationDays = *p.DurationDays
	}
	if p.CertificatePrice != nil {
		in.CertificatePrice = *p.CertificatePrice
	}
	if p.PassPercentage != nil {
		in.PassPercentage = *p.PassPercentage
	}
	if p.IsActive != nil {
		in.IsActive = *p.IsActive
	}
}

type TaskInput struct {
	Title          string
	Description    string
	Points         int
	SubmissionType models.SubmissionType
	WaitTimeHours  int
	MaxAttempts    int
	IsActive       bool
}

type TaskPatch struct {
	Title          *string
	Description    *string
	Points         *int
	SubmissionType *models.SubmissionType
	WaitTimeHours  *int
	MaxAttempts    *int
	IsActive       *bool
}

func (p TaskPatch) Apply(t *models.Task) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Points != nil {
		t.Points = *p.Points
	}
	if p.SubmissionType != nil {
		t.SubmissionType = *p.SubmissionType
	}
	if p.WaitTimeHours != nil {
		t.WaitTimeHours = *p.WaitTimeHours
	}
	if p.MaxAttempts != nil {
		t.MaxAttempts = *p.MaxAttempts
	}
	if p.IsActive != nil {
		t.IsActive = *p.IsActive
	}
}

func validateInternship(in models.Internship) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return invalid("title is required")
	case in.DurationDays <= 0:
		return invalid("duration days must be positive")
	case in.CertificatePrice.IsNegative():
		return invalid("certificate price cannot be negative")
	case in.PassPercentage < 0 || in.PassPercentage > 100:
		return invalid("pass percentage must be between 0 and 100")
	}
	return nil
}

func validateTask(t models.Task) error {
	switch {
	case strings.TrimSpace(t.Title) == "":
		return invalid("task title is required")
	case t.Points <= 0:
		return invalid("task points must be positive")
	case !t.SubmissionType.Valid():
		return invalid("unknown submission type %q", t.SubmissionType)
	case t.WaitTimeHours < 0:
		return invalid("wait time cannot be negative")
	case t.MaxAttempts < 1:
		return invalid("max attempts must be at least 1")
	}
	return nil
}

// loadTasks returns every task of an internship ordered by task number.
func loadTasks(tx *gorm.DB, internshipID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := tx.Where("internship_id = ?", internshipID).Order("task_number asc").Find(&tasks).Error
	return tasks, err
}

func (s *CatalogService) CreateInternship(ctx context.Context, actorID uuid.UUID, input InternshipInput) (*models.Internship, error) {
	internship := models.Internship{
		Title:            strings.TrimSpace(input.Title),
		Description:      input.Description,
		DurationDays:     input.DurationDays,
		CertificatePrice: input.CertificatePrice,
		PassPercentage:   input.PassPercentage,
		IsActive:         input.IsActive,
	}
	if err := validateInternship(internship); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&internship).Error; err != nil {
		return nil, translate(err, "internship", internship.ID)
	}

	s.audit("internship.created", actorID, map[string]interface{}{"internship_id": internship.ID.String(), "title": internship.Title})
	return &internship, nil
}

func (s *CatalogService) GetInternship(ctx context.Context, id uuid.UUID) (*models.Internship, error) {
	var internship models.Internship
	err := s.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("task_number asc") }).
		First(&internship, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "internship", id)
	}
	return &internship, nil
}

func (s *CatalogService) ListInternships(ctx context.Context, activeOnly bool) ([]models.Internship, error) {
	var internships []models.Internship
	q := s.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("task_number asc") }).
		Order("created_at desc")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&internships).Error; err != nil {
		return nil, err
	}
	return internships, nil
}

func (s *CatalogService) UpdateInternship(ctx context.Context, actorID, id uuid.UUID, patch InternshipPatch) (*models.Internship, error) {
	var internship models.Internship
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&internship, "id = ?", id).Error; err != nil {
			return translate(err, "internship", id)
		}
		patch.Apply(&internship)
		if err := validateInternship(internship); err != nil {
			return err
		}
		err := tx.Model(&internship).
			Select("title", "description", "duration_days", "certificate_price", "pass_percentage", "is_active").
			Updates(&internship).Error
		return translate(err, "internship", id)
	})
	if err != nil {
		return nil, err
	}

	s.audit("internship.updated", actorID, map[string]interface{}{"internship_id": id.String()})
	return &internship, nil
}

// DeleteInternship removes the internship together with its tasks, enrollments
// and everything the enrollments own, inside one transaction.
func (s *CatalogService) DeleteInternship(ctx context.Context, actorID, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var internship models.Internship
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&internship, "id = ?", id).Error; err != nil {
			return translate(err, "internship", id)
		}

		var sessions int64
		if err := tx.Model(&models.CertificateSession{}).Where("internship_id = ?", id).Count(&sessions).Error; err != nil {
			return err
		}
		var payments int64
		if err := tx.Model(&models.Payment{}).Where("internship_id = ?", id).Count(&payments).Error; err != nil {
			return err
		}
		if sessions > 0 || payments > 0 {
			return conflict("internship has payments or issued certificates")
		}

		var enrollmentIDs []uuid.UUID
		if err := tx.Model(&models.Enrollment{}).Where("internship_id = ?", id).Pluck("id", &enrollmentIDs).Error; err != nil {
			return err
		}
		if err := deleteEnrollmentsCascade(tx, enrollmentIDs); err != nil {
			return err
		}
		if err := tx.Where("internship_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Internship{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	s.audit("internship.deleted", actorID, map[string]interface{}{"internship_id": id.String()})
	return nil
}

// AddTask appends a task; its number is one past the current last task.
func (s *CatalogService) AddTask(ctx context.Context, actorID, internshipID uuid.UUID, input TaskInput) (*models.Task, error) {
	task := models.Task{
		InternshipID:   internshipID,
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		Points:         input.Points,
		SubmissionType: input.SubmissionType,
		WaitTimeHours:  input.WaitTimeHours,
		MaxAttempts:    input.MaxAttempts,
		IsActive:       input.IsActive,
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var internship models.Internship
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&internship, "id = ?", internshipID).Error; err != nil {
			return translate(err, "internship", internshipID)
		}
		var count int64
		if err := tx.Model(&models.Task{}).Where("internship_id = ?", internshipID).Count(&count).Error; err != nil {
			return err
		}
		task.TaskNumber = int(count) + 1
		return translate(tx.Create(&task).Error, "task", task.ID)
	})
	if err != nil {
		return nil, err
	}

	s.audit("task.created", actorID, map[string]interface{}{"task_id": task.ID.String(), "internship_id": internshipID.String(), "task_number": task.TaskNumber})
	return &task, nil
}

// UpdateTask applies a patch to a task. Deactivating a task completes the
// enrollments for which it was the last unapproved active task.
func (s *CatalogService) UpdateTask(ctx context.Context, actorID, taskID uuid.UUID, patch TaskPatch) (*models.Task, error) {
	var task models.Task
	var completed []completion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&task, "id = ?", taskID).Error; err != nil {
			return translate(err, "task", taskID)
		}
		wasActive := task.IsActive
		patch.Apply(&task)
		if err := validateTask(task); err != nil {
			return err
		}
		if err := tx.Model(&task).
			Select("title", "description", "points", "submission_type", "wait_time_hours", "max_attempts", "is_active").
			Updates(&task).Error; err != nil {
			return err
		}
		if wasActive && !task.IsActive {
			var err error
			completed, err = completeFinishedEnrollments(tx, task.InternshipID, s.now())
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit("task.updated", actorID, map[string]interface{}{"task_id": taskID.String()})
	s.afterShrink(actorID, completed)
	return &task, nil
}

func (s *CatalogService) afterShrink(actorID uuid.UUID, completed []completion) {
	for _, c := range completed {
		s.notifyCompletion(c.enrollment.UserID, c.standing)
		s.audit("enrollment.completed", actorID, map[string]interface{}{
			"enrollment_id": c.enrollment.ID.String(),
			"final_score":   c.enrollment.FinalScore,
		})
	}
}

// DeleteTask removes a task nobody has submitted against and closes the gap in
// the numbering so task numbers stay dense.
func (s *CatalogService) DeleteTask(ctx context.Context, actorID, taskID uuid.UUID) error {
	var completed []completion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			return translate(err, "task", taskID)
		}
		var internship models.Internship
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&internship, "id = ?", task.InternshipID).Error; err != nil {
			return translate(err, "internship", task.InternshipID)
		}

		var submissions int64
		if err := tx.Model(&models.Submission{}).Where("task_id = ?", taskID).Count(&submissions).Error; err != nil {
			return err
		}
		if submissions > 0 {
			return conflict("task %d already has submissions", task.TaskNumber)
		}

		if err := tx.Delete(&models.Task{}, "id = ?", taskID).Error; err != nil {
			return err
		}

		var later []models.Task
		if err := tx.Where("internship_id = ? AND task_number > ?", task.InternshipID, task.TaskNumber).
			Order("task_number asc").Find(&later).Error; err != nil {
			return err
		}
		for _, t := range later {
			if err := tx.Model(&models.Task{}).Where("id = ?", t.ID).Update("task_number", t.TaskNumber-1).Error; err != nil {
				return err
			}
		}
		if !task.IsActive {
			return nil
		}
		var err error
		completed, err = completeFinishedEnrollments(tx, task.InternshipID, s.now())
		return err
	})
	if err != nil {
		return err
	}

	s.audit("task.deleted", actorID, map[string]interface{}{"task_id": taskID.String()})
	s.afterShrink(actorID, completed)
	return nil
}

// deleteEnrollmentsCascade removes enrollments and every row they own.
func deleteEnrollmentsCascade(tx *gorm.DB, enrollmentIDs []uuid.UUID) error {
	if len(enrollmentIDs) == 0 {
		return nil
	}
	owned := []interface{}{
		&models.TaskUnlockSchedule{},
		&models.ResubmissionOpportunity{},
		&models.Submission{},
	}
	for _, model := range owned {
		if err := tx.Where("enrollment_id IN ?", enrollmentIDs).Delete(model).Error; err != nil {
			return err
		}
	}
	return tx.Where("id IN ?", enrollmentIDs).Delete(&models.Enrollment{}).Error
}
