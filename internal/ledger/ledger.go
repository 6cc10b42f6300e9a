// Package ledger owns the transaction collection: recording, deletion,
// history and monthly aggregation. The collection is loaded once at open and
// re-persisted as a whole after every mutation.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"

	"kopilka/internal/core"
	"kopilka/internal/kvstore"
)

type Ledger struct {
	mu    sync.Mutex
	store kvstore.Store
	txs   []core.Transaction

	// Fallback category for expenses recorded without one; injected
	// configuration, not a hardcoded label.
	defaultExpenseCategory string
}

// Open loads the persisted transaction collection. A corrupt or missing blob
// degrades to an empty ledger: losing unreadable local history is strictly
// better than locking the user out of the app.
func Open(ctx context.Context, store kvstore.Store, defaultExpenseCategory string) (*Ledger, error) {
	raw, ok, err := store.Read(ctx, kvstore.KeyTransactions)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	var txs []core.Transaction
	if ok {
		if err := json.Unmarshal(raw, &txs); err != nil {
			slog.WarnContext(ctx, "Corrupt transaction collection, starting empty",
				"error", err, "bytes", len(raw))
			txs = nil
		}
	}

	slog.InfoContext(ctx, "Ledger opened", "transactions", len(txs))
	return &Ledger{
		store:                  store,
		txs:                    txs,
		defaultExpenseCategory: defaultExpenseCategory,
	}, nil
}

// Record validates, appends and persists a new transaction. An empty category
// defaults per kind. Validation runs here regardless of what the frontend
// already checked.
func (l *Ledger) Record(ctx context.Context, kind core.Kind, amount core.Money, category, note string) (core.Transaction, error) {
	if category == "" {
		switch kind {
		case core.Income:
			category = core.IncomeCategory
		case core.Expense:
			category = l.defaultExpenseCategory
		}
	}

	tx, err := core.NewTransaction(kind, amount, category, note)
	if err != nil {
		return core.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.txs = append(l.txs, tx)
	if err := l.persist(ctx); err != nil {
		l.txs = l.txs[:len(l.txs)-1]
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"transaction_id", tx.ID,
		"kind", tx.Kind,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category)
	return tx, nil
}

// Delete removes the transaction with the given id. Deleting an unknown id is
// a harmless no-op reported as false.
func (l *Ledger) Delete(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := slices.IndexFunc(l.txs, func(t core.Transaction) bool { return t.ID == id })
	if idx < 0 {
		return false, nil
	}

	removed := l.txs[idx]
	l.txs = slices.Delete(l.txs, idx, idx+1)
	if err := l.persist(ctx); err != nil {
		l.txs = slices.Insert(l.txs, idx, removed)
		return false, err
	}

	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id)
	return true, nil
}

// Recent returns up to limit transactions, newest first. The sequence is a
// snapshot: restartable and unaffected by later mutations.
func (l *Ledger) Recent(limit int) iter.Seq[core.Transaction] {
	l.mu.Lock()
	snap := slices.Clone(l.txs)
	l.mu.Unlock()

	return func(yield func(core.Transaction) bool) {
		for i, n := len(snap)-1, 0; i >= 0 && n < limit; i, n = i-1, n+1 {
			if !yield(snap[i]) {
				return
			}
		}
	}
}

// SummarizeMonth aggregates the given calendar month from the live collection.
func (l *Ledger) SummarizeMonth(year, month int) core.MonthSummary {
	l.mu.Lock()
	snap := slices.Clone(l.txs)
	l.mu.Unlock()
	return core.Summarize(snap, year, month)
}

// Len reports the number of stored transactions.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.txs)
}

func (l *Ledger) persist(ctx context.Context) error {
	raw, err := json.Marshal(l.txs)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	if err := l.store.Write(ctx, kvstore.KeyTransactions, raw); err != nil {
		return fmt.Errorf("persist transactions: %w", err)
	}
	return nil
}
