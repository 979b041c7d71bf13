package email

import (
	"fmt"
	"time"

	"collegium_backend/internal/config"
	"collegium_backend/internal/models"

	"gopkg.in/gomail.v2"
)

type Sender struct {
	cfg *config.Config
}

func NewSender(cfg *config.Config) *Sender {
	return &Sender{cfg: cfg}
}

func (e *Sender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(e.cfg.Email.FromEmail, e.cfg.Email.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		e.cfg.Email.SMTPHost,
		e.cfg.Email.SMTPPort,
		e.cfg.Email.SMTPUsername,
		e.cfg.Email.SMTPPassword,
	)

	return d.DialAndSend(m)
}

// SendExpiryReminder notifies a subscriber that their plan runs out soon.
func (e *Sender) SendExpiryReminder(to string, sub *models.UserSubscription) error {
	planName := sub.Plan.Name
	if planName == "" {
		planName = "your plan"
	}
	daysLeft := int(time.Until(sub.EndDate).Hours() / 24)
	if daysLeft < 0 {
		daysLeft = 0
	}

	subject := fmt.Sprintf("Your %s subscription expires in %d days", planName, daysLeft)
	body := fmt.Sprintf(
		"<p>Hi,</p><p>Your <b>%s</b> subscription ends on %s. Renew now to keep your benefits without interruption.</p>",
		planName, sub.EndDate.Format("2 January 2006"),
	)
	return e.Send(to, subject, body)
}
