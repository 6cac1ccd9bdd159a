// Package core provides the transaction model and the pure functions the
// entry, balance and history flows are built on.
//
// This file contains amount parsing and entry validation. The store itself
// trusts its callers; everything that rejects user input lives here.
package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrZeroDate      = errors.New("date cannot be zero")
)

// ParseAmount converts free-form user input into a decimal.
//
// It is deliberately lenient, the way the entry keypad is: whitespace is
// dropped, a comma counts as the decimal separator, only the first dot is
// kept, a minus is honoured only in leading position and any other
// character is ignored.
//
// Examples:
//
//	ParseAmount("1 234,50") -> 1234.5
//	ParseAmount("-12.3.4")  -> -12.34
//	ParseAmount("12abc")    -> 12
//	ParseAmount("-")        -> ErrInvalidAmount
func ParseAmount(input string) (decimal.Decimal, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")

	var b strings.Builder
	hasDot := false
	for i, r := range []rune(s) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			if hasDot {
				continue
			}
			hasDot = true
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}

	out := b.String()
	if out == "" || out == "-" || out == "." || out == "-." {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(out)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// CanSave reports whether the entry form holds enough to create a
// transaction: a positive amount and a category.
func CanSave(amountText, categoryKey string) bool {
	amount, err := ParseAmount(amountText)
	if err != nil || !amount.IsPositive() {
		return false
	}
	return strings.TrimSpace(categoryKey) != ""
}

// Entry is the raw content of the entry form.
type Entry struct {
	AmountText  string
	CategoryKey string
	Note        string
	Payment     string
	Date        time.Time
	Income      bool
}

func (e Entry) Validate() error {
	amount, err := ParseAmount(e.AmountText)
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.CategoryKey) == "" {
		return ErrEmptyCategory
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Transaction validates the entry and builds the signed transaction.
// Pass uuid.Nil to have a fresh ID assigned.
func (e Entry) Transaction(id uuid.UUID) (Transaction, error) {
	if err := e.Validate(); err != nil {
		return Transaction{}, err
	}
	amount, _ := ParseAmount(e.AmountText)
	if e.Income {
		amount = amount.Abs()
	} else {
		amount = amount.Abs().Neg()
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	return Transaction{
		ID:          id,
		Date:        e.Date,
		Amount:      amount,
		CategoryKey: strings.TrimSpace(e.CategoryKey),
		Note:        strings.TrimSpace(e.Note),
		Payment:     strings.TrimSpace(e.Payment),
	}, nil
}
