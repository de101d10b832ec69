package notifications

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const brevoBaseURL = "https://api.brevo.com/v3"

type BrevoService struct {
	SenderEmail string
	SenderName  string

	client *resty.Client
}

type brevoContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type brevoPayload struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

// NewBrevoService returns nil when the mailer is not configured, in which case
// e-mails are skipped.
func NewBrevoService(apiKey, senderEmail, senderName string) *BrevoService {
	if apiKey == "" || senderEmail == "" || senderName == "" {
		log.Println("⚠️ Email service not configured. Missing API Key, Sender Email, or Sender Name.")
		return nil
	}
	client := resty.New().
		SetBaseURL(brevoBaseURL).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetHeader("accept", "application/json").
		SetHeader("api-key", apiKey)

	log.Printf("✅ Email service initialized for sender %s", senderEmail)
	return &BrevoService{SenderEmail: senderEmail, SenderName: senderName, client: client}
}

func (s *BrevoService) Send(toEmail, toName, subject, htmlContent string) error {
	at := strings.Index(toEmail, "@")
	if at <= 0 {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}
	if toName == "" {
		toName = toEmail[:at]
	}

	resp, err := s.client.R().
		SetBody(brevoPayload{
			Sender:      brevoContact{Name: s.SenderName, Email: s.SenderEmail},
			To:          []brevoContact{{Name: toName, Email: toEmail}},
			Subject:     subject,
			HTMLContent: htmlContent,
		}).
		Post("/smtp/email")
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode() != 201 {
		log.Printf("Brevo API error: Status %d, Body: %s", resp.StatusCode(), resp.String())
		return fmt.Errorf("failed to send email via Brevo: status %d", resp.StatusCode())
	}
	return nil
}
