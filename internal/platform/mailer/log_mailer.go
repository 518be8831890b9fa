// Package mailer delivers activation code emails.
package mailer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"registration_backend/internal/platform/logger"
)

// LogMailer prints activation emails to a writer instead of sending them.
// It is meant for local development.
type LogMailer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLogMailer creates a LogMailer writing to w.
func NewLogMailer(w io.Writer) *LogMailer {
	return &LogMailer{w: w}
}

// SendActivationCode writes the email to the terminal.
func (m *LogMailer) SendActivationCode(ctx context.Context, to, code string) error {
	slog.InfoContext(ctx, "sending activation code email", "email", logger.RedactEmail(to))

	rule := strings.Repeat("=", 60)
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := fmt.Fprintf(m.w, "\n%s\nACTIVATION CODE EMAIL\n%s\nTo: %s\nActivation Code: %s\n%s\n\n",
		rule, rule, to, code, rule)
	return err
}
