package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"arcadeorders/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for order and payment notifications.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool { return m != nil && m.host != "" }

// Send delivers a plain-text message, optionally with one PDF attachment.
func (m *Mailer) Send(to, subject, body string, pdfName string, pdf []byte) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if len(pdf) > 0 {
		if _, err := e.Attach(bytes.NewReader(pdf), pdfName, "application/pdf"); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
