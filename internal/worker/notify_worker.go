// Package worker turns queued goal events into chat notifications.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"kopilka/internal/amqp"
	"kopilka/internal/core"
	"kopilka/internal/log"
	"kopilka/internal/notify"
)

// NotifyWorker consumes goal events and forwards completion announcements to
// the configured notifier.
type NotifyWorker struct {
	notifier notify.Notifier
	logger   *log.Logger
}

func NewNotifyWorker(notifier notify.Notifier) *NotifyWorker {
	return &NotifyWorker{
		notifier: notifier,
		logger: log.New(log.Config{
			Level:     slog.LevelInfo,
			Component: log.ComponentWorker,
		}),
	}
}

// HandleGoalEvent processes a single goal event. Unknown event kinds are
// acknowledged and dropped so schema additions never wedge the queue.
func (w *NotifyWorker) HandleGoalEvent(ctx context.Context, ev *amqp.GoalEvent) error {
	if ev.Kind != amqp.EventGoalCompleted {
		w.logger.WarnContext(ctx, "Ignoring unknown goal event kind", log.FieldKind, ev.Kind)
		return nil
	}

	text := CompletionMessage(ev)
	if err := w.notifier.Notify(ctx, text); err != nil {
		return fmt.Errorf("notify goal completion: %w", err)
	}

	w.logger.InfoContext(ctx, "Goal completion announced",
		log.FieldGoalID, ev.GoalID,
		log.FieldGoalTitle, ev.Title)
	return nil
}

// CompletionMessage renders the chat text for a completed goal.
func CompletionMessage(ev *amqp.GoalEvent) string {
	icon := ev.Icon
	if icon == "" {
		icon = core.DefaultGoalIcon
	}
	return fmt.Sprintf("%s Цель «%s» достигнута! Накоплено %s ₽ из %s ₽.",
		icon,
		ev.Title,
		core.Money{Cents: ev.BalanceCents}.FormatWhole(),
		core.Money{Cents: ev.TargetCents}.FormatWhole())
}
