package http

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in     string
		amount string
		signed string
	}{
		{"500", "500.00 ₽", "+500.00 ₽"},
		{"-120.5", "−120.50 ₽", "−120.50 ₽"},
		{"0", "0.00 ₽", "+0.00 ₽"},
		{"1234.567", "1234.57 ₽", "+1234.57 ₽"},
	}
	for _, tt := range tests {
		v := decimal.RequireFromString(tt.in)
		if got := formatAmount(v, "₽"); got != tt.amount {
			t.Errorf("formatAmount(%s) = %q, want %q", tt.in, got, tt.amount)
		}
		if got := formatSigned(v, "₽"); got != tt.signed {
			t.Errorf("formatSigned(%s) = %q, want %q", tt.in, got, tt.signed)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := map[string]string{
		"  coffee  ":        "coffee",
		"a\x00b\x07c":       "abc",
		"line1\nline2\tend": "line1\nline2\tend",
		"":                  "",
	}
	for in, want := range tests {
		if got := sanitizeInput(in); got != want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}
