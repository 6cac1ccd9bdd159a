package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// minusSign is U+2212, used for display strings.
const minusSign = "−"

// formatAmount renders v with two decimals and the currency symbol, marking
// only negatives ("−120.00 ₽").
func formatAmount(v decimal.Decimal, symbol string) string {
	sign := ""
	if v.IsNegative() {
		sign = minusSign
	}
	return sign + v.Abs().StringFixed(2) + " " + symbol
}

// formatSigned always marks the direction ("+3000.00 ₽", "−120.00 ₽").
func formatSigned(v decimal.Decimal, symbol string) string {
	sign := "+"
	if v.IsNegative() {
		sign = minusSign
	}
	return sign + v.Abs().StringFixed(2) + " " + symbol
}

// sanitizeInput trims and drops control characters other than tab and
// newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
