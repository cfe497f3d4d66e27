// AngelaMos | 2026
// mailer.go

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/carterperez-dev/kandi-backend/internal/config"
)

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// NewMailer returns an SMTP mailer when mail is enabled, otherwise a
// mailer that only logs.
func NewMailer(cfg config.MailConfig, logger *slog.Logger) Mailer {
	if !cfg.Enabled {
		if logger == nil {
			logger = slog.Default()
		}
		return &LogMailer{logger: logger}
	}
	return &SMTPMailer{cfg: cfg}
}

type SMTPMailer struct {
	cfg config.MailConfig
}

func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	if err := email.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := buildMessage(m.cfg.From, email)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{email.To}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", email.To, err)
	}

	return nil
}

func buildMessage(from string, email Email) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + email.To + "\r\n")
	b.WriteString("Subject: " + email.Subject + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(email.Body, "\n", "\r\n"))
	return []byte(b.String())
}

type LogMailer struct {
	logger *slog.Logger
}

func (m *LogMailer) Send(ctx context.Context, email Email) error {
	if err := email.Validate(); err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "email (mail disabled)",
		"kind", email.Kind,
		"to", email.To,
		"subject", email.Subject,
	)
	return nil
}
