package notifications

import (
	"fmt"
	"html"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"gorm.io/gorm"
)

// Mailer sends one HTML e-mail.
type Mailer interface {
	Send(toEmail, toName, subject, htmlContent string) error
}

// Pusher delivers a payload to the live connections of a user.
type Pusher interface {
	Push(userID uuid.UUID, payload interface{}) bool
}

// Dispatcher stores every notification, pushes it to connected clients and
// mails it in the background.
type Dispatcher struct {
	DB     *gorm.DB
	Mailer Mailer
	Pusher Pusher
}

func (d *Dispatcher) Notify(userID uuid.UUID, title, message, kind string) error {
	n := models.Notification{UserID: userID, Title: title, Message: message, Kind: kind}
	if err := d.DB.Create(&n).Error; err != nil {
		return fmt.Errorf("save notification: %w", err)
	}

	if d.Pusher != nil {
		d.Pusher.Push(userID, n)
	}

	if d.Mailer != nil {
		var user models.User
		if err := d.DB.Select("id", "email", "full_name").First(&user, "id = ?", userID).Error; err != nil {
			log.Printf("⚠️ No mail for notification %s: %v", n.ID, err)
			return nil
		}
		body := fmt.Sprintf("<h3>%s</h3><p>Hi %s,</p><p>%s</p>",
			html.EscapeString(title), html.EscapeString(user.FullName), html.EscapeString(message))
		go func() {
			if err := d.Mailer.Send(user.Email, user.FullName, title, body); err != nil {
				log.Printf("🔥 Failed to send email to %s: %v", user.Email, err)
			}
		}()
	}
	return nil
}

func (d *Dispatcher) ListForUser(userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	q := d.DB.Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	var list []models.Notification
	err := q.Order("created_at desc").Limit(100).Find(&list).Error
	return list, err
}

// MarkRead marks one notification of the user as read. It reports false when
// no unread notification matched.
func (d *Dispatcher) MarkRead(userID, notificationID uuid.UUID) (bool, error) {
	res := d.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		Update("read_at", time.Now().UTC())
	return res.RowsAffected > 0, res.Error
}
