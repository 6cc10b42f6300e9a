package goals

import (
	"context"
	"errors"
	"testing"

	"kopilka/internal/core"
	"kopilka/internal/kvstore"
	"kopilka/internal/ledger"
)

func openTestTracker(t *testing.T) (*Tracker, *ledger.Ledger, kvstore.Store) {
	t.Helper()
	store := kvstore.NewMemory()
	return openTrackerOn(t, store)
}

func openTrackerOn(t *testing.T, store kvstore.Store) (*Tracker, *ledger.Ledger, kvstore.Store) {
	t.Helper()
	ctx := context.Background()
	l, err := ledger.Open(ctx, store, "Прочее 🧩")
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	tr, err := Open(ctx, store, l)
	if err != nil {
		t.Fatalf("open tracker: %v", err)
	}
	return tr, l, store
}

func lastTransaction(t *testing.T, l *ledger.Ledger) core.Transaction {
	t.Helper()
	for tx := range l.Recent(1) {
		return tx
	}
	t.Fatalf("ledger is empty")
	return core.Transaction{}
}

func TestCreateValidation(t *testing.T) {
	tr, _, _ := openTestTracker(t)
	ctx := context.Background()

	g, err := tr.Create(ctx, "Отпуск", "🏝️", core.Money{Cents: 5000000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Balance.Cents != 0 || g.Completed {
		t.Fatalf("new goal must start at zero, got %+v", g)
	}

	if _, err := tr.Create(ctx, "   ", "🐷", core.Money{}); !errors.Is(err, core.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if _, err := tr.Create(ctx, "x", "🐷", core.Money{Cents: -1}); !errors.Is(err, core.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestDepositMirrorsExpense(t *testing.T) {
	tr, l, _ := openTestTracker(t)
	ctx := context.Background()

	g, _ := tr.Create(ctx, "Отпуск", "🏝️", core.Money{Cents: 5000000})

	updated, completedNow, err := tr.Deposit(ctx, g.ID, core.Money{Cents: 50000})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if updated.Balance.Cents != 50000 {
		t.Fatalf("balance = %d, want 50000", updated.Balance.Cents)
	}
	if completedNow {
		t.Fatalf("deposit far below target must not complete")
	}

	if l.Len() != 1 {
		t.Fatalf("expected exactly one mirrored transaction, have %d", l.Len())
	}
	mirror := lastTransaction(t, l)
	if mirror.Kind != core.Expense {
		t.Fatalf("mirror kind = %q, want expense", mirror.Kind)
	}
	if mirror.Amount.Cents != 50000 {
		t.Fatalf("mirror amount = %d, want 50000", mirror.Amount.Cents)
	}
	if mirror.Category != core.SavingsCategory {
		t.Fatalf("mirror category = %q, want %q", mirror.Category, core.SavingsCategory)
	}
	if mirror.Note != "Копилка → Отпуск" {
		t.Fatalf("mirror note = %q", mirror.Note)
	}
}

func TestWithdrawMirrorsIncome(t *testing.T) {
	tr, l, _ := openTestTracker(t)
	ctx := context.Background()

	g, _ := tr.Create(ctx, "Отпуск", "🏝️", core.Money{Cents: 5000000})
	tr.Deposit(ctx, g.ID, core.Money{Cents: 50000})

	updated, completedNow, err := tr.Withdraw(ctx, g.ID, core.Money{Cents: 20000})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if updated.Balance.Cents != 30000 {
		t.Fatalf("balance = %d, want 30000", updated.Balance.Cents)
	}
	if completedNow {
		t.Fatalf("withdraw can never complete a goal")
	}

	mirror := lastTransaction(t, l)
	if mirror.Kind != core.Income {
		t.Fatalf("mirror kind = %q, want income", mirror.Kind)
	}
	if mirror.Amount.Cents != 20000 || mirror.Category != core.SavingsCategory {
		t.Fatalf("unexpected mirror %+v", mirror)
	}
	if mirror.Note != "Копилка ← Отпуск" {
		t.Fatalf("mirror note = %q", mirror.Note)
	}
}

func TestWithdrawInsufficientFundsLeavesNoTrace(t *testing.T) {
	tr, l, _ := openTestTracker(t)
	ctx := context.Background()

	g, _ := tr.Create(ctx, "Отпуск", "🏝️", core.Money{Cents: 5000000})

	_, _, err := tr.Withdraw(ctx, g.ID, core.Money{Cents: 1000})
	if !errors.Is(err, core.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	goals := tr.Goals()
	if goals[0].Balance.Cents != 0 {
		t.Fatalf("balance changed on rejected withdraw: %d", goals[0].Balance.Cents)
	}
	if l.Len() != 0 {
		t.Fatalf("rejected withdraw must not mirror, ledger has %d", l.Len())
	}
}

func TestAdjustRejectsBadInput(t *testing.T) {
	tr, _, _ := openTestTracker(t)
	ctx := context.Background()

	g, _ := tr.Create(ctx, "Отпуск", "🏝️", core.Money{})

	if _, _, err := tr.Deposit(ctx, g.ID, core.Money{Cents: 0}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, _, err := tr.Deposit(ctx, "missing", core.Money{Cents: 100}); !errors.Is(err, core.ErrGoalNotFound) {
		t.Fatalf("expected ErrGoalNotFound, got %v", err)
	}
}

func TestCompletionTransitionFiresOnce(t *testing.T) {
	tr, _, _ := openTestTracker(t)
	ctx := context.Background()

	g, _ := tr.Create(ctx, "Отпуск", "🏝️", core.Money{Cents: 5000000})

	_, completedNow, err := tr.Deposit(ctx, g.ID, core.Money{Cents: 3000000})
	if err != nil || completedNow {
		t.Fatalf("first deposit: completedNow=%v err=%v", completedNow, err)
	}

	updated, completedNow, err := tr.Deposit(ctx, g.ID, core.Money{Cents: 2000000})
	if err != nil {
		t.Fatalf("second deposit: %v", err)
	}
	if !updated.Completed || !completedNow {
		t.Fatalf("reaching the target must flag the transition, got completed=%v now=%v",
			updated.Completed, completedNow)
	}

	updated, completedNow, err = tr.Deposit(ctx, g.ID, core.Money{Cents: 500000})
	if err != nil {
		t.Fatalf("third deposit: %v", err)
	}
	if !updated.Completed {
		t.Fatalf("goal must stay completed")
	}
	if completedNow {
		t.Fatalf("re-depositing into a completed goal must not re-trigger")
	}
}

func TestCompletionCanRearmAfterWithdraw(t *testing.T) {
	tr, _, _ := openTestTracker(t)
	ctx := context.Background()

	g, _ := tr.Create(ctx, "Машина", "🚗", core.Money{Cents: 100000})
	tr.Deposit(ctx, g.ID, core.Money{Cents: 100000})

	updated, _, err := tr.Withdraw(ctx, g.ID, core.Money{Cents: 50000})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if updated.Completed {
		t.Fatalf("dropping below target must clear the derived flag")
	}

	_, completedNow, err := tr.Deposit(ctx, g.ID, core.Money{Cents: 50000})
	if err != nil {
		t.Fatalf("redeposit: %v", err)
	}
	if !completedNow {
		t.Fatalf("crossing the target again is a fresh transition")
	}
}

func TestOpenEndedGoalNeverCompletes(t *testing.T) {
	tr, _, _ := openTestTracker(t)
	ctx := context.Background()

	g, _ := tr.Create(ctx, "Просто копим", "🪙", core.Money{})
	updated, completedNow, err := tr.Deposit(ctx, g.ID, core.Money{Cents: 99999999})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if updated.Completed || completedNow {
		t.Fatalf("open-ended goal must never report completion")
	}
}

func TestDeleteGoalKeepsMirroredHistory(t *testing.T) {
	tr, l, _ := openTestTracker(t)
	ctx := context.Background()

	g, _ := tr.Create(ctx, "Отпуск", "🏝️", core.Money{Cents: 5000000})
	tr.Deposit(ctx, g.ID, core.Money{Cents: 50000})

	removed, err := tr.Delete(ctx, g.ID)
	if err != nil || !removed {
		t.Fatalf("delete: removed=%v err=%v", removed, err)
	}
	removed, err = tr.Delete(ctx, g.ID)
	if err != nil || removed {
		t.Fatalf("second delete must be a no-op, removed=%v err=%v", removed, err)
	}

	if l.Len() != 1 {
		t.Fatalf("mirrored history must survive goal deletion, ledger has %d", l.Len())
	}
}

func TestTotals(t *testing.T) {
	tr, _, _ := openTestTracker(t)
	ctx := context.Background()

	a, _ := tr.Create(ctx, "A", "🐷", core.Money{})
	b, _ := tr.Create(ctx, "B", "🐷", core.Money{})
	tr.Deposit(ctx, a.ID, core.Money{Cents: 10000})
	tr.Deposit(ctx, b.ID, core.Money{Cents: 25000})

	count, sum := tr.Totals()
	if count != 2 || sum.Cents != 35000 {
		t.Fatalf("totals = %d/%d, want 2/35000", count, sum.Cents)
	}
}

type goalWriteFailingStore struct {
	*kvstore.Memory
	failGoals bool
}

func (f *goalWriteFailingStore) Write(ctx context.Context, key string, value []byte) error {
	if f.failGoals && key == kvstore.KeyGoals {
		return errors.New("disk full")
	}
	return f.Memory.Write(ctx, key, value)
}

func TestAdjustRollsBackMirrorOnPersistFailure(t *testing.T) {
	store := &goalWriteFailingStore{Memory: kvstore.NewMemory()}
	tr, l, _ := openTrackerOn(t, store)
	ctx := context.Background()

	g, _ := tr.Create(ctx, "Отпуск", "🏝️", core.Money{Cents: 5000000})

	store.failGoals = true
	if _, _, err := tr.Deposit(ctx, g.ID, core.Money{Cents: 50000}); err == nil {
		t.Fatalf("expected persist error")
	}

	goals := tr.Goals()
	if goals[0].Balance.Cents != 0 {
		t.Fatalf("balance must roll back, got %d", goals[0].Balance.Cents)
	}
	if l.Len() != 0 {
		t.Fatalf("mirror must be rolled back, ledger has %d", l.Len())
	}
}

func TestOpenRecomputesStaleCompletedFlag(t *testing.T) {
	store := kvstore.NewMemory()
	ctx := context.Background()

	// A record from an older schema version: flag says completed, balance says otherwise.
	stale := `[{"id":"g1","title":"Отпуск","icon":"🏝️","balance":100,"target":5000000,"completed":true,"created_at":"2025-01-01T00:00:00Z"}]`
	if err := store.Write(ctx, kvstore.KeyGoals, []byte(stale)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tr, _, _ := openTrackerOn(t, store)
	goals := tr.Goals()
	if len(goals) != 1 {
		t.Fatalf("expected one goal, got %d", len(goals))
	}
	if goals[0].Completed {
		t.Fatalf("stale persisted flag must not be trusted")
	}
}
