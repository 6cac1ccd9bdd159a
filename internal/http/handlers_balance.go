package http

import (
	"fmt"
	"net/http"

	"pocketbook/internal/core"
)

type balanceDisplay struct {
	Saldo        string `json:"saldo"`
	Income       string `json:"income"`
	Expense      string `json:"expense"`
	MonthExpense string `json:"month_expense"`
	MonthSaldo   string `json:"month_saldo"`
}

type balanceResponse struct {
	Total   core.Balance       `json:"total"`
	Month   core.MonthOverview `json:"month"`
	Display balanceDisplay     `json:"display"`
}

// handleBalance serves all-time totals plus one month's breakdown. Results
// are cached per month until the next store change; concurrent misses for
// the same month share one computation.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.now().In(s.loc))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.balance(params.Year, params.Month))
}

func (s *Server) balance(year, month int) balanceResponse {
	key := fmt.Sprintf("%04d-%02d", year, month)
	if v, ok := s.balanceCache.Get(key); ok {
		return v
	}

	v, _, _ := s.balanceGroup.Do(key, func() (any, error) {
		gen := s.balanceCache.Generation()
		resp := s.computeBalance(year, month)
		s.balanceCache.SetIfGeneration(gen, key, resp)
		return resp, nil
	})
	return v.(balanceResponse)
}

func (s *Server) computeBalance(year, month int) balanceResponse {
	txs := s.store.Transactions()
	total := core.Totals(txs)
	overview := core.MonthSummary(txs, year, month, s.loc)
	if overview.ByCategory == nil {
		overview.ByCategory = []core.CategoryAmount{}
	}
	return balanceResponse{
		Total: total,
		Month: overview,
		Display: balanceDisplay{
			Saldo:        formatAmount(total.Saldo, s.currency),
			Income:       formatAmount(total.Income, s.currency),
			Expense:      formatAmount(total.Expense, s.currency),
			MonthExpense: formatAmount(overview.Balance.Expense, s.currency),
			MonthSaldo:   formatAmount(overview.Balance.Saldo, s.currency),
		},
	}
}

type historyItem struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Subtitle string `json:"subtitle,omitempty"`
	Symbol   string `json:"symbol"`
	Amount   string `json:"amount"`
	Display  string `json:"display"`
	Income   bool   `json:"income"`
}

type historyDay struct {
	Day   string        `json:"day"`
	Items []historyItem `json:"items"`
}

const (
	incomeLabel  = "Income"
	incomeSymbol = "arrow.down.circle.fill"
)

// handleHistory groups transactions by calendar day, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.now().In(s.loc))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs := s.store.Transactions()
	if params.Explicit {
		txs = core.InMonth(txs, params.Year, params.Month, s.loc)
	}

	days := []historyDay{}
	for _, g := range core.GroupByDay(txs, s.loc) {
		day := historyDay{Day: g.Day.Format("2006-01-02")}
		for _, tx := range g.Transactions {
			day.Items = append(day.Items, s.historyItem(tx))
		}
		days = append(days, day)
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) historyItem(tx core.Transaction) historyItem {
	item := historyItem{
		ID:      tx.ID.String(),
		Label:   incomeLabel,
		Symbol:  incomeSymbol,
		Amount:  tx.Amount.String(),
		Display: formatSigned(tx.Amount, s.currency),
		Income:  tx.IsIncome(),
	}
	if cat, ok := core.CategoryByKey(tx.CategoryKey); ok {
		item.Label, item.Symbol = cat.Label, cat.Symbol
	}
	switch {
	case tx.Note != "":
		item.Subtitle = tx.Note
	case tx.Payment != "":
		item.Subtitle = tx.Payment
	}
	return item
}
