package core

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an expense amount aggregated by category key.
type CategoryAmount struct {
	Key    string          `json:"key"`
	Amount decimal.Decimal `json:"amount"`
}

// Balance holds income and expense magnitudes and their difference.
// Expense is reported as a positive number.
type Balance struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Saldo   decimal.Decimal `json:"saldo"`
}

// MarshalJSON writes the amount as a bare number, like Transaction.
func (c CategoryAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key    string      `json:"key"`
		Amount json.Number `json:"amount"`
	}{c.Key, json.Number(c.Amount.String())})
}

// MarshalJSON writes the amounts as bare numbers, like Transaction.
func (b Balance) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Income  json.Number `json:"income"`
		Expense json.Number `json:"expense"`
		Saldo   json.Number `json:"saldo"`
	}{json.Number(b.Income.String()), json.Number(b.Expense.String()), json.Number(b.Saldo.String())})
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year       int              `json:"year"`
	Month      int              `json:"month"` // 1-12
	Balance    Balance          `json:"balance"`
	ByCategory []CategoryAmount `json:"by_category"`
}

// DayGroup is one section of the history view.
type DayGroup struct {
	Day          time.Time     `json:"day"`
	Transactions []Transaction `json:"transactions"`
}

// MonthRange returns the half-open interval [start, end) covering the month.
func MonthRange(year, month int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// InMonth filters txs down to the given month, preserving order.
func InMonth(txs []Transaction, year, month int, loc *time.Location) []Transaction {
	start, end := MonthRange(year, month, loc)
	var out []Transaction
	for _, tx := range txs {
		if !tx.Date.Before(start) && tx.Date.Before(end) {
			out = append(out, tx)
		}
	}
	return out
}

// Totals aggregates every transaction in txs.
func Totals(txs []Transaction) Balance {
	income, expense := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch {
		case tx.IsIncome():
			income = income.Add(tx.Amount)
		case tx.IsExpense():
			expense = expense.Sub(tx.Amount)
		}
	}
	return Balance{Income: income, Expense: expense, Saldo: income.Sub(expense)}
}

// MonthlyExpense returns the positive sum of expenses within the month.
func MonthlyExpense(txs []Transaction, year, month int, loc *time.Location) decimal.Decimal {
	return Totals(InMonth(txs, year, month, loc)).Expense
}

// MonthSummary builds the balance view of one month. Categories are listed
// by descending amount, ties broken by key.
func MonthSummary(txs []Transaction, year, month int, loc *time.Location) MonthOverview {
	monthTxs := InMonth(txs, year, month, loc)

	byKey := map[string]decimal.Decimal{}
	for _, tx := range monthTxs {
		if !tx.IsExpense() {
			continue
		}
		byKey[tx.CategoryKey] = byKey[tx.CategoryKey].Sub(tx.Amount)
	}
	cats := make([]CategoryAmount, 0, len(byKey))
	for k, v := range byKey {
		cats = append(cats, CategoryAmount{Key: k, Amount: v})
	}
	slices.SortFunc(cats, func(a, b CategoryAmount) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		if a.Key < b.Key {
			return -1
		}
		if a.Key > b.Key {
			return 1
		}
		return 0
	})

	return MonthOverview{
		Year:       year,
		Month:      month,
		Balance:    Totals(monthTxs),
		ByCategory: cats,
	}
}

// GroupByDay buckets txs by calendar day in loc, newest day first. Within a
// day the input order is kept, so a sorted input stays sorted.
func GroupByDay(txs []Transaction, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}
	var groups []DayGroup
	index := map[time.Time]int{}
	for _, tx := range txs {
		t := tx.Date.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Day: day})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}
	slices.SortStableFunc(groups, func(a, b DayGroup) int {
		return b.Day.Compare(a.Day)
	})
	return groups
}
