package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"pocketbook/internal/core"
	"pocketbook/internal/log"
	"pocketbook/internal/store"
)

type categoriesResponse struct {
	Expense []core.Category `json:"expense"`
	Income  []core.Category `json:"income"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, categoriesResponse{
		Expense: core.ExpenseCategories,
		Income:  core.IncomeCategories,
	})
}

// handleListTransactions returns the whole sorted list, or one month of it
// when year or month is given.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.now().In(s.loc))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs := s.store.Transactions()
	if params.Explicit {
		txs = core.InMonth(txs, params.Year, params.Month, s.loc)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := parseDate(p.Get("date"), s.now(), s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry := core.Entry{
		AmountText:  p.Get("amount"),
		CategoryKey: p.Get("categoryKey"),
		Note:        p.Get("note"),
		Payment:     p.Get("payment"),
		Date:        date,
		Income:      p.Bool("income"),
	}
	tx, err := entry.Transaction(uuid.Nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.add(w, r, tx)
}

// handleCreateIncome records an uncategorized income, the quick top-up of
// the balance screen.
func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil || !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, core.ErrInvalidAmount.Error())
		return
	}
	date, err := parseDate(p.Get("date"), s.now(), s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.store.AddIncome(amount, p.Get("note"), date)
	if err != nil {
		s.writeAddError(w, r, err)
		return
	}
	log.LogTransactionAdded(r.Context(), log.FromContext(r.Context()), tx.ID.String(), tx.Amount.String(), "")
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) add(w http.ResponseWriter, r *http.Request, tx core.Transaction) {
	if err := s.store.Add(tx); err != nil {
		s.writeAddError(w, r, err)
		return
	}
	log.LogTransactionAdded(r.Context(), log.FromContext(r.Context()), tx.ID.String(), tx.Amount.String(), tx.CategoryKey)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) writeAddError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrDuplicateID) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	log.LogError(r.Context(), log.FromContext(r.Context()), "Add transaction failed", err, log.OpCreate, nil)
	writeError(w, http.StatusInternalServerError, "could not add transaction")
}

// handleResetTransactions erases every transaction.
func (s *Server) handleResetTransactions(w http.ResponseWriter, r *http.Request) {
	s.store.Reset()
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transactions reset", log.FieldOperation, log.OpReset)
	w.WriteHeader(http.StatusNoContent)
}
