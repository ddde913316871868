package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/rmullur/medist/internal/config"
	"github.com/rmullur/medist/internal/core"
)

// SMTPMailer sends verification emails through an SMTP relay. With SendGrid
// the username is the literal string "apikey" and the password is the key.
type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	baseURL string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer:  gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:    cfg.MailFrom,
		baseURL: cfg.BaseURL,
	}
}

func (m *SMTPMailer) SendVerification(to, name, token string) error {
	verificationURL := fmt.Sprintf("%s/emailconfirmation?token=%s", m.baseURL, token)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Medist Email Verification")
	msg.SetBody("text/html", fmt.Sprintf(`
		<h2>Email Verification</h2>
		<p>Hello %s,</p>
		<p>Click the link below to verify your email:</p>
		<a href="%s">Verify Email</a>
	`, name, verificationURL))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

var _ core.Mailer = (*SMTPMailer)(nil)
