package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notifier delivers a message to a user. Delivery is best-effort.
type Notifier interface {
	Notify(userID uuid.UUID, title, message, kind string) error
}

// FileStore persists an uploaded artifact and returns a stable URL for it.
type FileStore interface {
	Store(ctx context.Context, data []byte, category, filename string) (string, error)
}

// Auditor records an action. Implementations must not block the caller.
type Auditor interface {
	Log(action string, actorID *uuid.UUID, details map[string]interface{})
}

// CertificateRenderer turns certificate data into a printable document.
type CertificateRenderer interface {
	Render(ctx context.Context, data CertificateData) ([]byte, error)
}

const (
	KindSubmission  = "SUBMISSION"
	KindReview      = "REVIEW"
	KindCompletion  = "COMPLETION"
	KindPayment     = "PAYMENT"
	KindCertificate = "CERTIFICATE"
	KindEnrollment  = "ENROLLMENT"
)

type Options struct {
	Notifier Notifier
	Files    FileStore
	Auditor  Auditor
	Renderer CertificateRenderer

	ResubmissionWindow time.Duration
	CertificatePrefix  string
	MaxProofBytes      int64

	Now func() time.Time
}

type Services struct {
	Catalog      *CatalogService
	Enrollments  *EnrollmentService
	Submissions  *SubmissionService
	Payments     *PaymentService
	Certificates *CertificateService
}

// core is shared by every service: the database handle, the collaborators and
// the workflow settings.
type core struct {
	db       *gorm.DB
	notifier Notifier
	files    FileStore
	auditor  Auditor
	renderer CertificateRenderer

	resubmissionWindow time.Duration
	certificatePrefix  string
	maxProofBytes      int64
	now                func() time.Time
}

func New(db *gorm.DB, opts Options) *Services {
	c := &core{
		db:                 db,
		notifier:           opts.Notifier,
		files:              opts.Files,
		auditor:            opts.Auditor,
		renderer:           opts.Renderer,
		resubmissionWindow: opts.ResubmissionWindow,
		certificatePrefix:  opts.CertificatePrefix,
		maxProofBytes:      opts.MaxProofBytes,
		now:                opts.Now,
	}
	if c.resubmissionWindow <= 0 {
		c.resubmissionWindow = 7 * 24 * time.Hour
	}
	if c.certificatePrefix == "" {
		c.certificatePrefix = "INT"
	}
	if c.maxProofBytes <= 0 {
		c.maxProofBytes = 5 << 20
	}
	if c.now == nil {
		c.now = func() time.Time { return time.Now().UTC() }
	}

	return &Services{
		Catalog:      &CatalogService{core: c},
		Enrollments:  &EnrollmentService{core: c},
		Submissions:  &SubmissionService{core: c},
		Payments:     &PaymentService{core: c},
		Certificates: &CertificateService{core: c},
	}
}

// notify runs after the primary transaction has committed; failures are logged only.
func (c *core) notify(userID uuid.UUID, title, message, kind string) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(userID, title, message, kind); err != nil {
		log.Printf("⚠️ Failed to notify user %s (%s): %v", userID, kind, err)
	}
}

func (c *core) notifyCompletion(userID uuid.UUID, standing Standing) {
	msg := fmt.Sprintf("You completed every task with %.1f%% (pass mark %.0f%%).", standing.Percentage, standing.PassPercentage)
	if standing.Eligible {
		msg += " You can now purchase your certificate."
	}
	c.notify(userID, "Internship completed", msg, KindCompletion)
}

func (c *core) audit(action string, actorID uuid.UUID, details map[string]interface{}) {
	if c.auditor == nil {
		return
	}
	actor := actorID
	c.auditor.Log(action, &actor, details)
}
