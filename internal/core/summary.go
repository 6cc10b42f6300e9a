package core

import (
	"math"
	"sort"
)

type (
	// CategoryAmount is an expense amount aggregated under one category label.
	CategoryAmount struct {
		Category string `json:"category"`
		Amount   Money  `json:"amount"`
	}

	// TopCategory is the largest expense category of a month together with
	// its share of the month's total expense.
	TopCategory struct {
		Category string `json:"category"`
		Amount   Money  `json:"amount"`
		Percent  int    `json:"percent"`
	}

	// MonthSummary is the aggregate of one calendar month. Ranked holds the
	// category breakdown in descending amount order; its order drives both
	// the top-category insight and the chart slice order.
	MonthSummary struct {
		Year         int              `json:"year"`
		Month        int              `json:"month"`
		TotalIncome  Money            `json:"total_income"`
		TotalExpense Money            `json:"total_expense"`
		NetBalance   Money            `json:"net_balance"`
		ByCategory   map[string]Money `json:"by_category"`
		Ranked       []CategoryAmount `json:"ranked"`
		TopCategory  *TopCategory     `json:"top_category,omitempty"`
	}
)

// Summarize aggregates the transactions whose date falls in the given
// calendar month. Income is netted into the totals but excluded from the
// category breakdown. Ranking ties are broken by first-encountered category.
//
// This is a pure function recomputed on demand; the transaction set is small
// and mutated rarely, so there is no incremental aggregate to invalidate.
func Summarize(txs []Transaction, year, month int) MonthSummary {
	s := MonthSummary{
		Year:       year,
		Month:      month,
		ByCategory: make(map[string]Money),
	}
	var firstSeen []string
	for _, t := range txs {
		if !t.Date.In(year, month) {
			continue
		}
		switch t.Kind {
		case Income:
			s.TotalIncome.Cents += t.Amount.Cents
		case Expense:
			s.TotalExpense.Cents += t.Amount.Cents
			if _, seen := s.ByCategory[t.Category]; !seen {
				firstSeen = append(firstSeen, t.Category)
			}
			sum := s.ByCategory[t.Category]
			sum.Cents += t.Amount.Cents
			s.ByCategory[t.Category] = sum
		}
	}
	s.NetBalance = Money{Cents: s.TotalIncome.Cents - s.TotalExpense.Cents}

	s.Ranked = make([]CategoryAmount, 0, len(firstSeen))
	for _, c := range firstSeen {
		s.Ranked = append(s.Ranked, CategoryAmount{Category: c, Amount: s.ByCategory[c]})
	}
	sort.SliceStable(s.Ranked, func(i, j int) bool {
		return s.Ranked[i].Amount.Cents > s.Ranked[j].Amount.Cents
	})

	if s.TotalExpense.Cents > 0 && len(s.Ranked) > 0 {
		top := s.Ranked[0]
		pct := int(math.Round(float64(top.Amount.Cents) / float64(s.TotalExpense.Cents) * 100))
		s.TopCategory = &TopCategory{Category: top.Category, Amount: top.Amount, Percent: pct}
	}
	return s
}
