package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionService struct {
	*core
}

// SubmissionPayload is the intern-supplied content of an attempt. FileURL is
// only ever set by SubmitFile from the file store's own result.
type SubmissionPayload struct {
	GithubURL string                 `json:"github_url,omitempty"`
	Answers   map[string]interface{} `json:"answers,omitempty"`
	FileURL   string                 `json:"-"`
	Notes     string                 `json:"notes,omitempty"`
}

func (p SubmissionPayload) validateFor(kind models.SubmissionType) error {
	switch kind {
	case models.SubmissionTypeGithub:
		u, err := url.Parse(strings.TrimSpace(p.GithubURL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("a valid repository URL is required")
		}
	case models.SubmissionTypeForm:
		if len(p.Answers) == 0 {
			return invalid("form answers are required")
		}
	case models.SubmissionTypeFile:
		if strings.TrimSpace(p.FileURL) == "" {
			return invalid("file tasks are submitted as an upload")
		}
	default:
		return invalid("unknown submission type %q", kind)
	}
	return nil
}

func (p SubmissionPayload) toJSON() datatypes.JSONMap {
	out := datatypes.JSONMap{}
	if p.GithubURL != "" {
		out["github_url"] = strings.TrimSpace(p.GithubURL)
	}
	if len(p.Answers) > 0 {
		out["answers"] = p.Answers
	}
	if p.FileURL != "" {
		out["file_url"] = p.FileURL
	}
	if p.Notes != "" {
		out["notes"] = p.Notes
	}
	return out
}

// ReviewInput is an admin decision on a pending submission. Score is optional
// and defaults to the task's points on approval.
type ReviewInput struct {
	Decision models.SubmissionStatus
	Score    *int
	Feedback string
}

// SubmitFile stores the attachment of a FILE task and records the attempt in
// one call, so a FILE submission always points at a file this service stored.
func (s *SubmissionService) SubmitFile(ctx context.Context, userID, taskID uuid.UUID, data []byte, filename, notes string) (*models.Submission, error) {
	if len(data) == 0 {
		return nil, invalid("file is empty")
	}
	if s.files == nil {
		return nil, errors.New("file storage is not configured")
	}
	var task models.Task
	if err := s.db.WithContext(ctx).First(&task, "id = ?", taskID).Error; err != nil {
		return nil, translate(err, "task", taskID)
	}
	if task.SubmissionType != models.SubmissionTypeFile {
		return nil, invalid("task %d expects a %s submission", task.TaskNumber, task.SubmissionType)
	}

	name := fmt.Sprintf("%s_%s_%s", userID, uuid.NewString(), filename)
	fileURL, err := s.files.Store(ctx, data, "submissions", name)
	if err != nil {
		return nil, err
	}
	sub, err := s.submit(ctx, userID, taskID, SubmissionPayload{FileURL: fileURL, Notes: notes})
	if err != nil {
		log.Printf("⚠️ Stored attachment %s for a submission that was refused: %v", fileURL, err)
		return nil, err
	}
	return sub, nil
}

// Submit records a new attempt for a GITHUB or FORM task. The task must be
// reachable from the unlock cursor, unless a rejection reopened it through a
// resubmission window. FILE tasks go through SubmitFile.
func (s *SubmissionService) Submit(ctx context.Context, userID, taskID uuid.UUID, payload SubmissionPayload) (*models.Submission, error) {
	payload.FileURL = ""
	return s.submit(ctx, userID, taskID, payload)
}

func (s *SubmissionService) submit(ctx context.Context, userID, taskID uuid.UUID, payload SubmissionPayload) (*models.Submission, error) {
	now := s.now()
	var submission models.Submission
	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			return translate(err, "task", taskID)
		}

		var enrollment models.Enrollment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND internship_id = ?", userID, task.InternshipID).
			First(&enrollment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: internship %s", ErrNotEnrolled, task.InternshipID)
		}
		if err != nil {
			return err
		}
		if enrollment.Status != models.EnrollmentActive {
			return fmt.Errorf("%w: enrollment is %s", ErrNotEnrolled, enrollment.Status)
		}
		if !task.IsActive {
			return fmt.Errorf("%w: task %d is not active", ErrTaskLocked, task.TaskNumber)
		}
		if err := payload.validateFor(task.SubmissionType); err != nil {
			return err
		}

		var prior []models.Submission
		if err := tx.Where("enrollment_id = ? AND task_id = ?", enrollment.ID, task.ID).
			Order("attempt_number asc").Find(&prior).Error; err != nil {
			return err
		}
		for _, p := range prior {
			switch p.Status {
			case models.SubmissionPending:
				return conflict("task %d already has a submission awaiting review", task.TaskNumber)
			case models.SubmissionApproved:
				return conflict("task %d is already approved", task.TaskNumber)
			}
		}

		tasks, err := loadTasks(tx, task.InternshipID)
		if err != nil {
			return err
		}
		opportunity, err := openOpportunity(tx, enrollment.ID, task.ID, now)
		if err != nil {
			return err
		}

		unlocked := opportunity != nil ||
			(len(prior) == 0 && reachableFromCursor(task.TaskNumber, enrollment.CurrentUnlockedTask, tasks))
		if !unlocked {
			return fmt.Errorf("%w: task %d (unlocked up to %d)", ErrTaskLocked, task.TaskNumber, enrollment.CurrentUnlockedTask)
		}
		if len(prior) >= task.MaxAttempts {
			return fmt.Errorf("%w: %d of %d attempts used", ErrAttemptLimitExceeded, len(prior), task.MaxAttempts)
		}

		submission = models.Submission{
			EnrollmentID:  enrollment.ID,
			TaskID:        task.ID,
			UserID:        userID,
			AttemptNumber: len(prior) + 1,
			Status:        models.SubmissionPending,
			Payload:       payload.toJSON(),
			SubmittedAt:   now,
		}
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}
		if opportunity != nil {
			if err := tx.Model(opportunity).Update("used_at", now).Error; err != nil {
				return err
			}
		}

		schedule := models.TaskUnlockSchedule{
			EnrollmentID: enrollment.ID,
			TaskID:       task.ID,
			SubmissionID: submission.ID,
			UnlocksAt:    now.Add(time.Duration(task.WaitTimeHours) * time.Hour),
		}
		return tx.Create(&schedule).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(userID, "Submission received",
		fmt.Sprintf("Your attempt %d for task %d (%s) is awaiting review.", submission.AttemptNumber, task.TaskNumber, task.Title),
		KindSubmission)
	s.audit("submission.created", userID, map[string]interface{}{
		"submission_id": submission.ID.String(),
		"task_id":       task.ID.String(),
		"attempt":       submission.AttemptNumber,
	})
	return &submission, nil
}

// openOpportunity returns the unused resubmission window for the task that is
// still open at now, if any.
func openOpportunity(tx *gorm.DB, enrollmentID, taskID uuid.UUID, now time.Time) (*models.ResubmissionOpportunity, error) {
	var candidates []models.ResubmissionOpportunity
	if err := tx.Where("enrollment_id = ? AND task_id = ? AND used_at IS NULL", enrollmentID, taskID).
		Find(&candidates).Error; err != nil {
		return nil, err
	}
	var best *models.ResubmissionOpportunity
	for i := range candidates {
		if candidates[i].OpenAt(now) && (best == nil || candidates[i].AllowedUntil.After(best.AllowedUntil)) {
			best = &candidates[i]
		}
	}
	return best, nil
}

type reviewOutcome struct {
	submission models.Submission
	enrollment models.Enrollment
	task       models.Task
	completed  bool
	standing   Standing
	deadline   time.Time
}

// completion is an enrollment that just finished, with its standing at that moment.
type completion struct {
	enrollment models.Enrollment
	standing   Standing
}

// Review moves a pending submission to APPROVED or REJECTED. It is a one-shot
// transition; reviewing a submission twice fails with ErrConflict. The
// enrollment row is locked so concurrent reviews of one enrollment serialize.
func (s *SubmissionService) Review(ctx context.Context, submissionID, reviewerID uuid.UUID, input ReviewInput) (*models.Submission, error) {
	if input.Decision != models.SubmissionApproved && input.Decision != models.SubmissionRejected {
		return nil, invalid("decision must be APPROVED or REJECTED")
	}

	now := s.now()
	var out reviewOutcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ref models.Submission
		if err := tx.Select("id", "enrollment_id").First(&ref, "id = ?", submissionID).Error; err != nil {
			return translate(err, "submission", submissionID)
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&out.enrollment, "id = ?", ref.EnrollmentID).Error; err != nil {
			return translate(err, "enrollment", ref.EnrollmentID)
		}
		sub := &out.submission
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(sub, "id = ?", submissionID).Error; err != nil {
			return translate(err, "submission", submissionID)
		}
		if sub.Status != models.SubmissionPending {
			return conflict("submission was already reviewed (%s)", sub.Status)
		}
		if err := tx.First(&out.task, "id = ?", sub.TaskID).Error; err != nil {
			return translate(err, "task", sub.TaskID)
		}

		sub.Status = input.Decision
		sub.ReviewedAt = &now
		sub.ReviewedBy = &reviewerID
		if fb := strings.TrimSpace(input.Feedback); fb != "" {
			sub.AdminFeedback = &fb
		}

		if input.Decision == models.SubmissionRejected {
			sub.Score = 0
			if err := saveReview(tx, sub); err != nil {
				return err
			}
			out.deadline = now.Add(s.resubmissionWindow)
			return tx.Create(&models.ResubmissionOpportunity{
				EnrollmentID: sub.EnrollmentID,
				TaskID:       sub.TaskID,
				SubmissionID: sub.ID,
				AllowedUntil: out.deadline,
			}).Error
		}

		return s.approve(tx, &out, input.Score, now)
	})
	if err != nil {
		return nil, err
	}

	s.afterReview(reviewerID, out)
	return &out.submission, nil
}

func (s *SubmissionService) approve(tx *gorm.DB, out *reviewOutcome, requested *int, now time.Time) error {
	sub, enrollment, task := &out.submission, &out.enrollment, out.task

	score := task.Points
	if requested != nil {
		score = clamp(*requested, 0, task.Points)
	}
	sub.Score = score

	tasks, err := loadTasks(tx, task.InternshipID)
	if err != nil {
		return err
	}
	highest := highestActiveTaskNumber(tasks)
	sub.NextTaskUnlocked = task.TaskNumber < highest

	if err := saveReview(tx, sub); err != nil {
		return err
	}

	// The cursor is a task number, so inactive tasks count toward the cap.
	next := task.TaskNumber + 1
	if limit := len(tasks) + 1; next > limit {
		next = limit
	}
	if next > enrollment.CurrentUnlockedTask {
		enrollment.CurrentUnlockedTask = next
	}

	var total int64
	if err := tx.Model(&models.Submission{}).
		Where("enrollment_id = ? AND status = ?", enrollment.ID, models.SubmissionApproved).
		Select("COALESCE(SUM(score), 0)").Scan(&total).Error; err != nil {
		return err
	}
	enrollment.FinalScore = int(total)

	if !enrollment.IsCompleted && task.TaskNumber == highest {
		done, err := allActiveTasksApproved(tx, enrollment.ID, tasks)
		if err != nil {
			return err
		}
		if done {
			markCompleted(enrollment, now)
			out.completed = true
		}
	}

	var internship models.Internship
	if err := tx.First(&internship, "id = ?", task.InternshipID).Error; err != nil {
		return translate(err, "internship", task.InternshipID)
	}
	out.standing = EvaluateStanding(*enrollment, internship, tasks)

	return tx.Model(enrollment).
		Select("current_unlocked_task", "final_score", "is_completed", "completion_date", "status").
		Updates(enrollment).Error
}

func saveReview(tx *gorm.DB, sub *models.Submission) error {
	return tx.Model(sub).
		Select("status", "score", "admin_feedback", "reviewed_at", "reviewed_by", "next_task_unlocked").
		Updates(sub).Error
}

func markCompleted(enrollment *models.Enrollment, now time.Time) {
	enrollment.IsCompleted = true
	enrollment.CompletionDate = &now
	enrollment.Status = models.EnrollmentCompleted
}

// completeFinishedEnrollments completes every ACTIVE enrollment of the
// internship whose remaining active tasks are all approved. It runs when the
// active task set shrinks, since no review will trigger completion for interns
// who already finished the rest.
func completeFinishedEnrollments(tx *gorm.DB, internshipID uuid.UUID, now time.Time) ([]completion, error) {
	tasks, err := loadTasks(tx, internshipID)
	if err != nil {
		return nil, err
	}
	if highestActiveTaskNumber(tasks) == 0 {
		return nil, nil
	}
	var internship models.Internship
	if err := tx.First(&internship, "id = ?", internshipID).Error; err != nil {
		return nil, translate(err, "internship", internshipID)
	}

	var open []models.Enrollment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("internship_id = ? AND status = ? AND is_completed = ?", internshipID, models.EnrollmentActive, false).
		Find(&open).Error; err != nil {
		return nil, err
	}

	var done []completion
	for i := range open {
		enrollment := &open[i]
		finished, err := allActiveTasksApproved(tx, enrollment.ID, tasks)
		if err != nil {
			return nil, err
		}
		if !finished {
			continue
		}
		markCompleted(enrollment, now)
		if err := tx.Model(enrollment).
			Select("is_completed", "completion_date", "status").
			Updates(enrollment).Error; err != nil {
			return nil, err
		}
		done = append(done, completion{enrollment: *enrollment, standing: EvaluateStanding(*enrollment, internship, tasks)})
	}
	return done, nil
}

func allActiveTasksApproved(tx *gorm.DB, enrollmentID uuid.UUID, tasks []models.Task) (bool, error) {
	var approvedTaskIDs []uuid.UUID
	if err := tx.Model(&models.Submission{}).
		Where("enrollment_id = ? AND status = ?", enrollmentID, models.SubmissionApproved).
		Distinct().Pluck("task_id", &approvedTaskIDs).Error; err != nil {
		return false, err
	}
	approved := make(map[uuid.UUID]bool, len(approvedTaskIDs))
	for _, id := range approvedTaskIDs {
		approved[id] = true
	}
	for _, t := range tasks {
		if t.IsActive && !approved[t.ID] {
			return false, nil
		}
	}
	return true, nil
}

func (s *SubmissionService) afterReview(reviewerID uuid.UUID, out reviewOutcome) {
	sub, task := out.submission, out.task
	feedback := ""
	if sub.AdminFeedback != nil {
		feedback = " Feedback: " + *sub.AdminFeedback
	}

	if sub.Status == models.SubmissionRejected {
		s.notify(sub.UserID, "Submission needs changes",
			fmt.Sprintf("Task %d (%s) was not approved. You can resubmit until %s.%s",
				task.TaskNumber, task.Title, out.deadline.Format("Jan 2, 2006 15:04 MST"), feedback),
			KindReview)
	} else {
		s.notify(sub.UserID, "Submission approved",
			fmt.Sprintf("Task %d (%s) was approved with %d/%d points.%s", task.TaskNumber, task.Title, sub.Score, task.Points, feedback),
			KindReview)
	}
	if out.completed {
		s.notifyCompletion(sub.UserID, out.standing)
	}

	s.audit("submission.reviewed", reviewerID, map[string]interface{}{
		"submission_id": sub.ID.String(),
		"decision":      string(sub.Status),
		"score":         sub.Score,
		"completed":     out.completed,
	})
}

func (s *SubmissionService) Get(ctx context.Context, userID, submissionID uuid.UUID, asAdmin bool) (*models.Submission, error) {
	var sub models.Submission
	if err := s.db.WithContext(ctx).First(&sub, "id = ?", submissionID).Error; err != nil {
		return nil, translate(err, "submission", submissionID)
	}
	if !asAdmin && sub.UserID != userID {
		return nil, fmt.Errorf("%w: submission belongs to another user", ErrUnauthorized)
	}
	return &sub, nil
}

// ListPending returns submissions awaiting review, oldest first, optionally
// limited to one internship.
func (s *SubmissionService) ListPending(ctx context.Context, internshipID *uuid.UUID) ([]models.Submission, error) {
	q := s.db.WithContext(ctx).Model(&models.Submission{}).
		Where("submissions.status = ?", models.SubmissionPending)
	if internshipID != nil {
		q = q.Joins("JOIN tasks ON tasks.id = submissions.task_id").
			Where("tasks.internship_id = ?", *internshipID)
	}
	var subs []models.Submission
	err := q.Order("submissions.submitted_at asc").Find(&subs).Error
	return subs, err
}

func (s *SubmissionService) ListForEnrollment(ctx context.Context, userID, enrollmentID uuid.UUID, asAdmin bool) ([]models.Submission, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadOwnedEnrollment(db, userID, enrollmentID, asAdmin); err != nil {
		return nil, err
	}
	var subs []models.Submission
	err := db.Where("enrollment_id = ?", enrollmentID).Order("submitted_at asc").Find(&subs).Error
	return subs, err
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
