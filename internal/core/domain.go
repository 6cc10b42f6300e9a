package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// Reserved labels shared with the mini-app frontend. The expense category list
// itself is injected configuration; these three are fixed by the product.
const (
	IncomeCategory  = "Доход"
	SavingsCategory = "Копилка 🐷"
	DefaultGoalIcon = "🐷"
)

const maxTitleLen = 30

const dateLayout = "2006-01-02"

type (
	Kind string

	// Date is a calendar day. Transactions carry both the creation instant
	// and the effective day; only the day takes part in month bucketing.
	Date struct {
		time.Time
	}

	// Transaction is one recorded income or expense event. Immutable after
	// creation; the only mutation the ledger supports is deletion.
	Transaction struct {
		ID        string    `json:"id"`
		CreatedAt time.Time `json:"created_at"`
		Date      Date      `json:"date"`
		Kind      Kind      `json:"kind"`
		Amount    Money     `json:"amount"`
		Category  string    `json:"category"`
		Note      string    `json:"note,omitempty"`
	}

	// Goal is a named savings jar with a running balance. Target of zero
	// means open-ended: the goal never reports completion.
	Goal struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Icon      string    `json:"icon"`
		Balance   Money     `json:"balance"`
		Target    Money     `json:"target"`
		Completed bool      `json:"completed"`
		CreatedAt time.Time `json:"created_at"`
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidKind       = errors.New("invalid transaction kind")
	ErrEmptyTitle        = errors.New("empty goal title")
	ErrTitleTooLong      = errors.New("goal title too long (max 30 characters)")
	ErrInvalidTarget     = errors.New("invalid goal target")
	ErrGoalNotFound      = errors.New("goal not found")
	ErrInsufficientFunds = errors.New("insufficient goal balance")
)

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// In reports whether the date falls in the given calendar month.
func (d Date) In(year, month int) bool {
	return d.Year() == year && int(d.Month()) == month
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// NewTransaction builds a transaction with a fresh id, CreatedAt set to the
// current instant and Date set to today. The category must already be
// resolved; defaulting per kind is the ledger's job.
func NewTransaction(kind Kind, amount Money, category, note string) (Transaction, error) {
	if err := kind.Validate(); err != nil {
		return Transaction{}, err
	}
	if err := amount.Validate(); err != nil {
		return Transaction{}, err
	}
	if strings.TrimSpace(category) == "" {
		return Transaction{}, errors.New("empty category")
	}
	now := time.Now()
	return Transaction{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Date:      NewDate(now.Year(), int(now.Month()), now.Day()),
		Kind:      kind,
		Amount:    amount,
		Category:  category,
		Note:      strings.TrimSpace(note),
	}, nil
}

func (t Transaction) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return errors.New("empty category")
	}
	return nil
}

// NewGoal builds a goal with a zero balance. A zero target is allowed and
// means the jar is open-ended.
func NewGoal(title, icon string, target Money) (Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Goal{}, ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return Goal{}, ErrTitleTooLong
	}
	if target.Cents < 0 {
		return Goal{}, ErrInvalidTarget
	}
	if strings.TrimSpace(icon) == "" {
		icon = DefaultGoalIcon
	}
	return Goal{
		ID:        uuid.NewString(),
		Title:     title,
		Icon:      icon,
		Target:    target,
		CreatedAt: time.Now(),
	}, nil
}

// HasTarget reports whether the goal has completion semantics.
func (g Goal) HasTarget() bool {
	return g.Target.Cents > 0
}

// RecomputeCompleted refreshes the derived Completed flag from the current
// balance. The flag is recomputed after every mutation and on load, so a
// stale value persisted by an older schema is never trusted.
func (g *Goal) RecomputeCompleted() {
	g.Completed = g.HasTarget() && g.Balance.Cents >= g.Target.Cents
}

// Progress returns the completion percentage clamped to [0, 100].
// Open-ended goals always report 0.
func (g Goal) Progress() int {
	if !g.HasTarget() {
		return 0
	}
	pct := int((g.Balance.Cents*100 + g.Target.Cents/2) / g.Target.Cents)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}
