package core

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a single income or expense record. Positive amounts are
// income, negative amounts are expenses. Values are never mutated once
// handed to the store.
type Transaction struct {
	ID          uuid.UUID
	Date        time.Time
	Amount      decimal.Decimal
	CategoryKey string // empty for income in the simplified variant
	Note        string
	Payment     string // payment method for expenses, source for income
}

// NewTransaction assigns a fresh ID.
func NewTransaction(date time.Time, amount decimal.Decimal, categoryKey, note, payment string) Transaction {
	return Transaction{
		ID:          uuid.New(),
		Date:        date,
		Amount:      amount,
		CategoryKey: categoryKey,
		Note:        note,
		Payment:     payment,
	}
}

// IsIncome reports whether the amount is positive.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// IsExpense reports whether the amount is negative.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// Compare orders transactions newest first. Equal dates fall back to the
// ascending string form of the ID so the order is total and deterministic.
func Compare(a, b Transaction) int {
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	return strings.Compare(a.ID.String(), b.ID.String())
}

// Sort sorts txs in place using Compare.
func Sort(txs []Transaction) {
	slices.SortFunc(txs, Compare)
}

// IsSorted reports whether txs is ordered by Compare.
func IsSorted(txs []Transaction) bool {
	return slices.IsSortedFunc(txs, Compare)
}

// transactionJSON is the wire shape shared by the data file and the API.
// The amount travels as a bare JSON number.
type transactionJSON struct {
	ID          uuid.UUID   `json:"id"`
	Date        time.Time   `json:"date"`
	Amount      json.Number `json:"amount"`
	CategoryKey string      `json:"categoryKey,omitempty"`
	Note        string      `json:"note,omitempty"`
	Payment     string      `json:"payment,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		ID:          t.ID,
		Date:        t.Date,
		Amount:      json.Number(t.Amount.String()),
		CategoryKey: t.CategoryKey,
		Note:        t.Note,
		Payment:     t.Payment,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var raw transactionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == uuid.Nil {
		return fmt.Errorf("transaction: missing id")
	}
	amount, err := decimal.NewFromString(raw.Amount.String())
	if err != nil {
		return fmt.Errorf("transaction %s: amount: %w", raw.ID, err)
	}
	*t = Transaction{
		ID:          raw.ID,
		Date:        raw.Date,
		Amount:      amount,
		CategoryKey: raw.CategoryKey,
		Note:        raw.Note,
		Payment:     raw.Payment,
	}
	return nil
}
