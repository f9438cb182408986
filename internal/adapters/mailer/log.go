// Package mailer holds ports.NotificationService implementations.
package mailer

import (
	"context"
	"log/slog"
)

// LogMailer writes outgoing emails to the structured log instead of sending them. It is the
// default until an SMTP relay is configured.
type LogMailer struct {
	From   string
	logger *slog.Logger
}

// NewLogMailer returns a mailer that logs through l, or slog.Default when l is nil.
func NewLogMailer(from string, l *slog.Logger) *LogMailer {
	if l == nil {
		l = slog.Default()
	}
	return &LogMailer{From: from, logger: l.With("component", "mailer")}
}

func (m *LogMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	m.logger.InfoContext(ctx, "email",
		"from", m.From,
		"to", to,
		"subject", subject,
		"body_bytes", len(body),
	)
	return nil
}
