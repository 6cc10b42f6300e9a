// Package services wires the ledger and goal tracker together behind one
// facade and hangs the optional side effects (event publishing) off it, so
// transports stay thin.
package services

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"kopilka/internal/amqp"
	"kopilka/internal/core"
	"kopilka/internal/goals"
	"kopilka/internal/kvstore"
	"kopilka/internal/ledger"
)

// FinanceService orchestrates transactions and savings goals over one store.
// The AMQP client is optional; without it goal completions simply go
// unannounced.
type FinanceService struct {
	ledger     *ledger.Ledger
	tracker    *goals.Tracker
	store      kvstore.Store
	amqpClient *amqp.Client
	categories []string
}

func NewFinanceService(l *ledger.Ledger, t *goals.Tracker, store kvstore.Store, amqpClient *amqp.Client, categories []string) *FinanceService {
	return &FinanceService{
		ledger:     l,
		tracker:    t,
		store:      store,
		amqpClient: amqpClient,
		categories: categories,
	}
}

// Categories returns the expense category labels offered to clients.
func (s *FinanceService) Categories() []string {
	return s.categories
}

// RecordTransaction adds a transaction to the ledger.
func (s *FinanceService) RecordTransaction(ctx context.Context, kind core.Kind, amount core.Money, category, note string) (core.Transaction, error) {
	return s.ledger.Record(ctx, kind, amount, category, note)
}

// DeleteTransaction removes a transaction; false means the id was unknown.
func (s *FinanceService) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	return s.ledger.Delete(ctx, id)
}

// RecentTransactions streams up to limit transactions, newest first.
func (s *FinanceService) RecentTransactions(limit int) iter.Seq[core.Transaction] {
	return s.ledger.Recent(limit)
}

// MonthSummary aggregates one calendar month.
func (s *FinanceService) MonthSummary(year, month int) core.MonthSummary {
	return s.ledger.SummarizeMonth(year, month)
}

// CreateGoal adds a new savings goal with a zero balance.
func (s *FinanceService) CreateGoal(ctx context.Context, title, icon string, target core.Money) (core.Goal, error) {
	return s.tracker.Create(ctx, title, icon, target)
}

// DeleteGoal removes a goal, leaving its mirrored history in the ledger.
func (s *FinanceService) DeleteGoal(ctx context.Context, id string) (bool, error) {
	return s.tracker.Delete(ctx, id)
}

// Goals returns all goals in creation order.
func (s *FinanceService) Goals() []core.Goal {
	return s.tracker.Goals()
}

// GoalTotals reports the goal count and the sum of all balances.
func (s *FinanceService) GoalTotals() (int, core.Money) {
	return s.tracker.Totals()
}

// Deposit moves money into a goal. When the deposit tips the goal over its
// target a completion event is published; publish failures are logged and
// never fail the deposit itself.
func (s *FinanceService) Deposit(ctx context.Context, id string, amount core.Money) (core.Goal, error) {
	g, completedNow, err := s.tracker.Deposit(ctx, id, amount)
	if err != nil {
		return core.Goal{}, err
	}

	if completedNow {
		s.publishGoalCompleted(ctx, g)
	}
	return g, nil
}

// Withdraw moves money back out of a goal.
func (s *FinanceService) Withdraw(ctx context.Context, id string, amount core.Money) (core.Goal, error) {
	g, _, err := s.tracker.Withdraw(ctx, id, amount)
	if err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (s *FinanceService) publishGoalCompleted(ctx context.Context, g core.Goal) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping goal event",
			"goal_id", g.ID)
		return
	}

	ev := amqp.NewGoalCompletedEvent(g.ID, g.Title, g.Icon, g.Balance.Cents, g.Target.Cents)
	if err := s.amqpClient.PublishGoalEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish goal completion",
			"goal_id", g.ID, "error", err)
	}
}

// Close releases the store and the AMQP connection.
func (s *FinanceService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close finance service: %v", errs)
	}
	return nil
}
