// Package mailer sends portal notification email. Delivery is always
// best-effort: a failure for one recipient is logged and never stops
// delivery to the rest, and never fails the operation that triggered it.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/sijgeria/community-portal/internal/config"
)

// Sender delivers a single message and reports whether it was accepted.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender delivers mail over plain-auth SMTP.
type SMTPSender struct {
	host     string
	port     string
	from     string
	password string
}

// NewSMTPSender constructs an SMTPSender from the portal settings.
func NewSMTPSender(cfg config.Settings) *SMTPSender {
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		password: cfg.SMTPPassword,
	}
}

// Send delivers one message with a single attempt, no retries.
func (s *SMTPSender) Send(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.from, s.password, s.host)

	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	if err := smtp.SendMail(s.host+":"+s.port, auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// LogSender stands in for SMTP when mail is disabled (local development).
// It accepts every message.
type LogSender struct {
	Logf func(format string, args ...any)
}

func (s *LogSender) Send(to, subject, _ string) error {
	if s.Logf != nil {
		s.Logf("mail disabled, would send %q to %s", subject, to)
	}
	return nil
}
