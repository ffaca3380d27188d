// Package notification delivers the transactional emails that ride on the
// event bus: verification links, password resets and leave updates. All
// delivery is best-effort; a failed send never fails the request that
// triggered it.
package notification

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/dayflow-hq/dayflow/internal"
)

// Sender delivers one email.
type Sender interface {
	Send(to []string, subject, body string) error
}

// SMTPSender delivers through a plain SMTP relay.
type SMTPSender struct {
	cfg internal.SMTPConfig
}

func NewSMTPSender(cfg internal.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	return smtp.SendMail(addr, auth, s.cfg.From, to, []byte(msg))
}

// LogSender is used when no SMTP host is configured. It records the email
// instead of sending it, which keeps development setups working.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(to []string, subject, body string) error {
	s.logger.Info("email suppressed, no smtp host configured",
		"to", strings.Join(to, ", "),
		"subject", subject)
	return nil
}

// NewSender picks the SMTP sender when a host is configured, otherwise the
// logging fallback.
func NewSender(cfg internal.SMTPConfig, logger *slog.Logger) Sender {
	if cfg.Host == "" {
		return NewLogSender(logger)
	}
	return NewSMTPSender(cfg)
}
