package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CertificateService struct {
	*core
}

// CertificateData is what gets printed on a certificate.
type CertificateData struct {
	CertificateNumber string
	HolderName        string
	InternshipTitle   string
	FinalScore        int
	MaxScore          int
	Percentage        float64
	IssuedAt          time.Time
}

func certificateData(session models.CertificateSession) CertificateData {
	return CertificateData{
		CertificateNumber: session.CertificateNumber,
		HolderName:        session.HolderName,
		InternshipTitle:   session.InternshipTitle,
		FinalScore:        session.FinalScore,
		MaxScore:          session.MaxScore,
		Percentage:        session.Percentage,
		IssuedAt:          session.IssuedAt,
	}
}

// IssueCertificateDownload returns the session with a download URL, rendering
// and storing the PDF on first request.
func (s *CertificateService) IssueCertificateDownload(ctx context.Context, userID, sessionID uuid.UUID, asAdmin bool) (*models.CertificateSession, error) {
	db := s.db.WithContext(ctx)
	var session models.CertificateSession
	if err := db.First(&session, "id = ?", sessionID).Error; err != nil {
		return nil, translate(err, "certificate session", sessionID)
	}
	if !asAdmin && session.UserID != userID {
		return nil, fmt.Errorf("%w: certificate belongs to another user", ErrUnauthorized)
	}
	if session.CertificateURL != nil && *session.CertificateURL != "" {
		return &session, nil
	}
	if s.renderer == nil || s.files == nil {
		return nil, errors.New("certificate rendering is not configured")
	}

	pdf, err := s.renderer.Render(ctx, certificateData(session))
	if err != nil {
		log.Printf("🔥 Failed to render certificate %s: %v", session.CertificateNumber, err)
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	url, err := s.files.Store(ctx, pdf, "certificates", session.CertificateNumber+".pdf")
	if err != nil {
		log.Printf("🔥 Failed to store certificate %s: %v", session.CertificateNumber, err)
		return nil, fmt.Errorf("store certificate: %w", err)
	}

	// A concurrent request may have stored the file first; keep the earliest URL.
	res := db.Model(&models.CertificateSession{}).
		Where("id = ? AND certificate_url IS NULL", session.ID).
		Update("certificate_url", url)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if err := db.First(&session, "id = ?", sessionID).Error; err != nil {
			return nil, translate(err, "certificate session", sessionID)
		}
		return &session, nil
	}
	session.CertificateURL = &url
	log.Printf("✅ Generated certificate %s for user %s", session.CertificateNumber, session.UserID)
	return &session, nil
}

// VerifyCertificateNumber looks up an issued certificate by its public number.
func (s *CertificateService) VerifyCertificateNumber(ctx context.Context, number string) (*models.CertificateSession, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, invalid("certificate number is required")
	}
	var session models.CertificateSession
	err := s.db.WithContext(ctx).Where("certificate_number = ?", number).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: certificate %s", ErrNotFound, number)
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *CertificateService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.CertificateSession, error) {
	var list []models.CertificateSession
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("issued_at desc").Find(&list).Error
	return list, err
}

// SubmitValidation uploads a scan of a printed certificate for an admin to
// match against the issued session.
func (s *CertificateService) SubmitValidation(ctx context.Context, userID, sessionID uuid.UUID, file []byte, filename string) (*models.CertificateValidation, error) {
	db := s.db.WithContext(ctx)
	var session models.CertificateSession
	if err := db.First(&session, "id = ?", sessionID).Error; err != nil {
		return nil, translate(err, "certificate session", sessionID)
	}
	if session.UserID != userID {
		return nil, fmt.Errorf("%w: certificate belongs to another user", ErrUnauthorized)
	}

	var open int64
	if err := db.Model(&models.CertificateValidation{}).
		Where("session_id = ? AND status = ?", sessionID, models.ValidationPending).
		Count(&open).Error; err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, conflict("a validation request is already pending for this certificate")
	}

	doc, err := utils.PrepareDocument(file, s.maxProofBytes)
	if err != nil {
		return nil, invalid("certificate scan: %v", err)
	}
	if s.files == nil {
		return nil, errors.New("file storage is not configured")
	}
	url, err := s.files.Store(ctx, doc.Data, "certificate-validations",
		fmt.Sprintf("%s_%s%s", session.CertificateNumber, uuid.NewString()[:8], doc.Extension))
	if err != nil {
		return nil, fmt.Errorf("store certificate scan: %w", err)
	}

	validation := models.CertificateValidation{
		SessionID: sessionID,
		UserID:    userID,
		FileURL:   url,
		Status:    models.ValidationPending,
	}
	if err := db.Create(&validation).Error; err != nil {
		return nil, err
	}
	s.audit("certificate.validation_submitted", userID, map[string]interface{}{
		"validation_id":      validation.ID.String(),
		"certificate_number": session.CertificateNumber,
	})
	return &validation, nil
}

func (s *CertificateService) ReviewValidation(ctx context.Context, validationID, reviewerID uuid.UUID, approve bool, notes string) (*models.CertificateValidation, error) {
	now := s.now()
	var validation models.CertificateValidation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&validation, "id = ?", validationID).Error; err != nil {
			return translate(err, "certificate validation", validationID)
		}
		if validation.Status != models.ValidationPending {
			return conflict("validation was already reviewed (%s)", validation.Status)
		}
		validation.Status = models.ValidationRejected
		if approve {
			validation.Status = models.ValidationValidated
		}
		if n := strings.TrimSpace(notes); n != "" {
			validation.Notes = &n
		} else if !approve {
			return invalid("notes are required when rejecting a validation")
		}
		validation.ReviewedBy = &reviewerID
		validation.ReviewedAt = &now
		return tx.Model(&validation).Select("status", "notes", "reviewed_by", "reviewed_at").Updates(&validation).Error
	})
	if err != nil {
		return nil, err
	}

	msg := "Your certificate was validated."
	if !approve {
		msg = "Your certificate could not be validated: " + *validation.Notes
	}
	s.notify(validation.UserID, "Certificate validation", msg, KindCertificate)
	s.audit("certificate.validation_reviewed", reviewerID, map[string]interface{}{
		"validation_id": validation.ID.String(),
		"status":        string(validation.Status),
	})
	return &validation, nil
}

func (s *CertificateService) ListPendingValidations(ctx context.Context) ([]models.CertificateValidation, error) {
	var list []models.CertificateValidation
	err := s.db.WithContext(ctx).Where("status = ?", models.ValidationPending).Order("created_at asc").Find(&list).Error
	return list, err
}

const defaultCertificateTemplate = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
body { font-family: Georgia, serif; text-align: center; padding: 60px; border: 12px double #1f3b57; }
h1 { font-size: 42px; color: #1f3b57; margin-bottom: 0; }
.name { font-size: 34px; margin: 30px 0 10px; border-bottom: 1px solid #999; display: inline-block; padding: 0 40px; }
.meta { color: #555; margin-top: 40px; font-size: 14px; }
</style></head><body>
<h1>Certificate of Completion</h1>
<p>This certifies that</p>
<div class="name">{{.HolderName}}</div>
<p>has successfully completed the internship</p>
<h2>{{.InternshipTitle}}</h2>
<p>with a score of {{.FinalScore}} / {{.MaxScore}} ({{printf "%.1f" .Percentage}}%)</p>
<div class="meta">Certificate No. {{.CertificateNumber}} &middot; Issued {{.IssuedAt.Format "January 2, 2006"}}</div>
</body></html>`

// ChromeRenderer prints the certificate HTML to PDF with a headless Chrome.
// TemplatePath overrides the built-in layout when set.
type ChromeRenderer struct {
	TemplatePath string
	Timeout      time.Duration
}

func (r ChromeRenderer) html(data CertificateData) (string, error) {
	var tmpl *template.Template
	var err error
	if r.TemplatePath != "" {
		tmpl, err = template.ParseFiles(r.TemplatePath)
	} else {
		tmpl, err = template.New("certificate").Parse(defaultCertificateTemplate)
	}
	if err != nil {
		return "", err
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func (r ChromeRenderer) Render(ctx context.Context, data CertificateData) ([]byte, error) {
	htmlContent, err := r.html(data)
	if err != nil {
		return nil, err
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ctx, cancelBrowser := chromedp.NewContext(ctx)
	defer cancelBrowser()

	var pdf []byte
	err = chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).WithLandscape(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}
