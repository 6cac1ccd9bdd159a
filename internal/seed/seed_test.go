package seed

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"pocketbook/internal/core"
)

func TestGenerateIsDeterministic(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	a := Generate(gofakeit.New(42), now, 50)
	b := Generate(gofakeit.New(42), now, 50)

	if len(a) != 50 || len(b) != 50 {
		t.Fatalf("expected 50 records, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || !a[i].Amount.Equal(b[i].Amount) || !a[i].Date.Equal(b[i].Date) {
			t.Fatalf("record %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerateShape(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	txs := Generate(gofakeit.New(7), now, DefaultCount)

	if !core.IsSorted(txs) {
		t.Fatalf("generated list not sorted")
	}
	earliest := now.AddDate(0, 0, -WindowDays)
	seen := map[string]bool{}
	for _, tx := range txs {
		if seen[tx.ID.String()] {
			t.Fatalf("duplicate id %s", tx.ID)
		}
		seen[tx.ID.String()] = true

		if tx.Date.Before(earliest) || tx.Date.After(now) {
			t.Fatalf("date %v outside window", tx.Date)
		}
		amount := tx.Amount.IntPart()
		switch {
		case tx.IsExpense():
			if amount < -7000 || amount > -100 {
				t.Fatalf("expense amount %d out of range", amount)
			}
			if _, ok := core.CategoryByKey(tx.CategoryKey); !ok || tx.Payment != DemoPayment {
				t.Fatalf("expense missing category or payment: %+v", tx)
			}
		case tx.IsIncome():
			if amount < 3000 || amount > 40000 {
				t.Fatalf("income amount %d out of range", amount)
			}
			if tx.CategoryKey != "" || tx.Note != DemoIncomeNote {
				t.Fatalf("income shape wrong: %+v", tx)
			}
		default:
			t.Fatalf("zero amount generated")
		}
	}
}
