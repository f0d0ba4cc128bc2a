// Package email sends transactional mail from the worker.
package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/luna-live/backend/config"
)

// Mailer sends a single message.
type Mailer interface {
	Send(to, subject, body string) error
}

// NewMailer returns an SMTP mailer when a host is configured, otherwise a
// logging mailer so invite jobs still complete in development.
func NewMailer(cfg config.SMTPConfig, logger *zap.Logger) Mailer {
	if cfg.Host == "" {
		return &logMailer{logger: logger}
	}
	return &smtpMailer{cfg: cfg}
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

func (m *smtpMailer) Send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

type logMailer struct {
	logger *zap.Logger
}

func (m *logMailer) Send(to, subject, body string) error {
	if m.logger != nil {
		m.logger.Info("mail delivery skipped, SMTP not configured",
			zap.String("to", to), zap.String("subject", subject))
	}
	return nil
}

// InviteSubject builds the subject line for an event invitation.
func InviteSubject(eventTitle string) string {
	return fmt.Sprintf("You have been invited to help run %q", eventTitle)
}

// InviteBody builds the plain-text body for an event invitation.
func InviteBody(eventTitle, inviteURL string) string {
	return fmt.Sprintf(
		"You have been invited as a co-admin of %q.\n\nAccept the invitation here:\n%s\n\nThe link is single-use and expires in 7 days.\n",
		eventTitle, inviteURL,
	)
}
