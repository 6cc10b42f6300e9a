// Package goals owns the savings jars: creation, deposit/withdraw with
// completion detection, and mirroring of every balance change into the ledger
// so goal activity shows up in monthly totals and history.
package goals

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"kopilka/internal/core"
	"kopilka/internal/kvstore"
)

// Recorder is the slice of the ledger the tracker needs for mirroring.
// Delete is only used to roll a mirror back when goal persistence fails.
type Recorder interface {
	Record(ctx context.Context, kind core.Kind, amount core.Money, category, note string) (core.Transaction, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type Tracker struct {
	mu     sync.Mutex
	store  kvstore.Store
	ledger Recorder
	goals  []core.Goal
}

// Open loads the persisted goal collection. Completed flags are recomputed on
// load; a record persisted by an older schema may carry a stale one. Corrupt
// data degrades to an empty collection.
func Open(ctx context.Context, store kvstore.Store, ledger Recorder) (*Tracker, error) {
	raw, ok, err := store.Read(ctx, kvstore.KeyGoals)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}

	var gs []core.Goal
	if ok {
		if err := json.Unmarshal(raw, &gs); err != nil {
			slog.WarnContext(ctx, "Corrupt goal collection, starting empty",
				"error", err, "bytes", len(raw))
			gs = nil
		}
	}
	for i := range gs {
		gs[i].RecomputeCompleted()
	}

	slog.InfoContext(ctx, "Goal tracker opened", "goals", len(gs))
	return &Tracker{store: store, ledger: ledger, goals: gs}, nil
}

// Create validates and persists a new goal with a zero balance.
func (t *Tracker) Create(ctx context.Context, title, icon string, target core.Money) (core.Goal, error) {
	g, err := core.NewGoal(title, icon, target)
	if err != nil {
		return core.Goal{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.goals = append(t.goals, g)
	if err := t.persist(ctx); err != nil {
		t.goals = t.goals[:len(t.goals)-1]
		return core.Goal{}, err
	}

	slog.InfoContext(ctx, "Goal created",
		"goal_id", g.ID,
		"title", g.Title,
		"target_cents", g.Target.Cents)
	return g, nil
}

// Deposit moves money from general spending into the jar. The mirrored
// expense transaction and the balance change commit together: the mirror is
// recorded first and removed again if the goal cannot be persisted.
//
// The returned flag reports a transition from not-completed to completed;
// re-depositing into an already completed goal never re-triggers it.
func (t *Tracker) Deposit(ctx context.Context, id string, amount core.Money) (core.Goal, bool, error) {
	return t.adjust(ctx, id, amount, +1)
}

// Withdraw moves money back out of the jar. The balance is a non-negative
// strongbox: a withdrawal that would overdraw it is rejected outright, with
// no mutation and no mirrored transaction.
func (t *Tracker) Withdraw(ctx context.Context, id string, amount core.Money) (core.Goal, bool, error) {
	return t.adjust(ctx, id, amount, -1)
}

func (t *Tracker) adjust(ctx context.Context, id string, amount core.Money, sign int64) (core.Goal, bool, error) {
	if err := amount.Validate(); err != nil {
		return core.Goal{}, false, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := slices.IndexFunc(t.goals, func(g core.Goal) bool { return g.ID == id })
	if idx < 0 {
		return core.Goal{}, false, core.ErrGoalNotFound
	}
	g := &t.goals[idx]

	kind := core.Expense
	note := "Копилка → " + g.Title
	if sign < 0 {
		if g.Balance.Cents < amount.Cents {
			return core.Goal{}, false, core.ErrInsufficientFunds
		}
		kind = core.Income
		note = "Копилка ← " + g.Title
	}

	mirror, err := t.ledger.Record(ctx, kind, amount, core.SavingsCategory, note)
	if err != nil {
		return core.Goal{}, false, fmt.Errorf("mirror goal operation: %w", err)
	}

	prev := *g
	g.Balance.Cents += sign * amount.Cents
	g.RecomputeCompleted()

	if err := t.persist(ctx); err != nil {
		*g = prev
		if _, delErr := t.ledger.Delete(ctx, mirror.ID); delErr != nil {
			slog.ErrorContext(ctx, "Failed to roll back mirrored transaction",
				"transaction_id", mirror.ID, "error", delErr)
		}
		return core.Goal{}, false, err
	}

	completedNow := !prev.Completed && g.Completed
	slog.InfoContext(ctx, "Goal balance updated",
		"goal_id", g.ID,
		"kind", kind,
		"amount_cents", amount.Cents,
		"balance_cents", g.Balance.Cents,
		"completed", g.Completed)
	return *g, completedNow, nil
}

// Delete removes the goal. Previously mirrored transactions stay in the
// ledger as ordinary history. Deleting an unknown id is a no-op.
func (t *Tracker) Delete(ctx context.Context, id string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := slices.IndexFunc(t.goals, func(g core.Goal) bool { return g.ID == id })
	if idx < 0 {
		return false, nil
	}

	removed := t.goals[idx]
	t.goals = slices.Delete(t.goals, idx, idx+1)
	if err := t.persist(ctx); err != nil {
		t.goals = slices.Insert(t.goals, idx, removed)
		return false, err
	}

	slog.InfoContext(ctx, "Goal deleted", "goal_id", id, "title", removed.Title)
	return true, nil
}

// Goals returns a snapshot of all goals in creation order.
func (t *Tracker) Goals() []core.Goal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.goals)
}

// Totals reports the goal count and the sum of all balances.
func (t *Tracker) Totals() (int, core.Money) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var sum core.Money
	for _, g := range t.goals {
		sum.Cents += g.Balance.Cents
	}
	return len(t.goals), sum
}

func (t *Tracker) persist(ctx context.Context) error {
	raw, err := json.Marshal(t.goals)
	if err != nil {
		return fmt.Errorf("encode goals: %w", err)
	}
	if err := t.store.Write(ctx, kvstore.KeyGoals, raw); err != nil {
		return fmt.Errorf("persist goals: %w", err)
	}
	return nil
}
