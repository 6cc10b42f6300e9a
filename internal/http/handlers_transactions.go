package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"kopilka/internal/core"
)

const maxHistoryLimit = 500

type recordTransactionRequest struct {
	Kind     string `json:"kind"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
	Note     string `json:"note"`
}

type transactionListResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	Count        int                `json:"count"`
}

func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req recordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "invalid amount")
		return
	}

	tx, err := s.svc.RecordTransaction(r.Context(), core.Kind(req.Kind), core.Money{Cents: cents}, strings.TrimSpace(req.Category), req.Note)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateAggregates()
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := s.historyLimit
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	txs := make([]core.Transaction, 0, limit)
	for tx := range s.svc.RecentTransactions(limit) {
		txs = append(txs, tx)
	}

	writeJSON(w, http.StatusOK, transactionListResponse{Transactions: txs, Count: len(txs)})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ok, err := s.svc.DeleteTransaction(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "transaction_not_found", "no transaction with id "+id)
		return
	}

	s.invalidateAggregates()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": s.svc.Categories(),
	})
}
