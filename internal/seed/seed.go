// Package seed generates demo transactions for an empty store.
package seed

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pocketbook/internal/core"
)

const (
	// DefaultCount is the number of records produced for a cold start.
	DefaultCount = 120
	// WindowDays is how far back generated dates reach.
	WindowDays = 120

	DemoPayment    = "Card"
	DemoIncomeNote = "Salary"
)

// Generate returns n transactions dated within the WindowDays before now,
// sorted newest first. Roughly half are expenses in a random base category
// and half are salary incomes. The result depends only on f and now.
func Generate(f *gofakeit.Faker, now time.Time, n int) []core.Transaction {
	start := now.AddDate(0, 0, -WindowDays)
	txs := make([]core.Transaction, 0, n)
	for i := 0; i < n; i++ {
		date := start.AddDate(0, 0, f.Number(0, WindowDays))
		tx := core.Transaction{
			ID:   uuid.MustParse(f.UUID()),
			Date: date,
		}
		if f.Bool() {
			cat := core.ExpenseCategories[f.Number(0, len(core.ExpenseCategories)-1)]
			tx.Amount = decimal.NewFromInt(-int64(f.Number(100, 7000)))
			tx.CategoryKey = cat.Key
			tx.Payment = DemoPayment
		} else {
			tx.Amount = decimal.NewFromInt(int64(f.Number(3000, 40000)))
			tx.Note = DemoIncomeNote
		}
		txs = append(txs, tx)
	}
	core.Sort(txs)
	return txs
}

// Func adapts Generate to a store seed callback using a faker seeded with
// seed. A zero seed draws from a random source.
func Func(seed int64, n int, now func() time.Time) func() []core.Transaction {
	return func() []core.Transaction {
		return Generate(gofakeit.New(seed), now(), n)
	}
}
