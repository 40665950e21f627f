package usecase

import (
	"context"
	"log/slog"

	"IntelBriefing/internal/domain"
	"IntelBriefing/internal/ports"
)

// Notifier makes at most one delivery attempt per briefing.
type Notifier struct {
	messenger ports.Messenger
	logger    *slog.Logger
}

// NewNotifier wraps messenger; nil means the destination is not configured.
func NewNotifier(messenger ports.Messenger, logger *slog.Logger) *Notifier {
	return &Notifier{messenger: messenger, logger: logger}
}

// Deliver sends text once and reports whether it went out. Errors are logged, never returned.
func (n *Notifier) Deliver(ctx context.Context, text string) bool {
	if n.messenger == nil {
		n.logError("messaging destination unavailable", "error", domain.ErrMissingCredential)
		return false
	}

	if err := n.messenger.Send(ctx, text); err != nil {
		n.logError("delivery failed", "error", err)
		return false
	}

	if n.logger != nil {
		n.logger.Info("message sent", "chars", len([]rune(text)))
	}
	return true
}

func (n *Notifier) logError(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Error(msg, args...)
	}
}
