package core

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{" 1 234,50 ", "1234.5", true},
		{"-12.3.4", "-12.34", true},
		{"12abc", "12", true},
		{"1-2", "12", true},
		{".5", "0.5", true},
		{"0", "0", true},
		{"", "", false},
		{"   ", "", false},
		{"-", "", false},
		{".", "", false},
		{"abc", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestCanSave(t *testing.T) {
	cases := []struct {
		amount, cat string
		ok          bool
	}{
		{"100", "food", true},
		{"0,01", "salary", true},
		{"0", "food", false},
		{"-5", "food", false},
		{"100", "", false},
		{"100", "  ", false},
		{"", "food", false},
	}
	for _, tc := range cases {
		if got := CanSave(tc.amount, tc.cat); got != tc.ok {
			t.Fatalf("CanSave(%q, %q) = %v, want %v", tc.amount, tc.cat, got, tc.ok)
		}
	}
}

func TestEntryTransactionSignsAmount(t *testing.T) {
	date := time.Date(2025, 9, 21, 10, 0, 0, 0, time.UTC)

	expense, err := Entry{AmountText: "500", CategoryKey: "food", Payment: "Card", Date: date}.Transaction(uuid.Nil)
	if err != nil {
		t.Fatalf("expense: %v", err)
	}
	if expense.Amount.String() != "-500" || expense.ID == uuid.Nil || expense.Payment != "Card" {
		t.Fatalf("unexpected expense: %+v", expense)
	}

	id := uuid.New()
	income, err := Entry{AmountText: "2000", CategoryKey: SalaryKey, Note: "  ", Date: date, Income: true}.Transaction(id)
	if err != nil {
		t.Fatalf("income: %v", err)
	}
	if income.Amount.String() != "2000" || income.ID != id || income.Note != "" {
		t.Fatalf("unexpected income: %+v", income)
	}
}

func TestEntryValidate(t *testing.T) {
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bads := []struct {
		e    Entry
		want error
	}{
		{Entry{AmountText: "x", CategoryKey: "food", Date: date}, ErrInvalidAmount},
		{Entry{AmountText: "0", CategoryKey: "food", Date: date}, ErrInvalidAmount},
		{Entry{AmountText: "10", CategoryKey: "", Date: date}, ErrEmptyCategory},
		{Entry{AmountText: "10", CategoryKey: "food"}, ErrZeroDate},
	}
	for i, tc := range bads {
		if err := tc.e.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: got %v want %v", i, err, tc.want)
		}
	}
}

func TestCategoryByKey(t *testing.T) {
	if c, ok := CategoryByKey("food"); !ok || c.Label != "Cafe" {
		t.Fatalf("food lookup: %+v %v", c, ok)
	}
	if _, ok := CategoryByKey(SalaryKey); !ok {
		t.Fatalf("salary should be in the income catalog")
	}
	if _, ok := CategoryByKey("food2"); ok {
		t.Fatalf("unexpected key food2")
	}
}
