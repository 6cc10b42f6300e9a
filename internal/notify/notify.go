// Package notify delivers goal completion messages to the user's chat.
package notify

import (
	"context"
	"log/slog"
)

// Notifier sends a short human-readable message.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// LogNotifier writes messages to the log. Used when no Telegram credentials
// are configured so the worker still drains its queue.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, text string) error {
	slog.InfoContext(ctx, "Notification", "text", text)
	return nil
}
