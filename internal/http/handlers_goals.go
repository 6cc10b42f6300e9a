package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"kopilka/internal/core"
)

type createGoalRequest struct {
	Title  string `json:"title"`
	Icon   string `json:"icon"`
	Target string `json:"target"`
}

type goalAmountRequest struct {
	Amount string `json:"amount"`
}

type goalListResponse struct {
	Goals      []core.Goal `json:"goals"`
	Count      int         `json:"count"`
	SavedCents core.Money  `json:"saved_cents"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	// Absent target means an open-ended jar.
	var target core.Money
	if v := strings.TrimSpace(req.Target); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", "invalid target")
			return
		}
		target = core.Money{Cents: cents}
	}

	g, err := s.svc.CreateGoal(r.Context(), req.Title, req.Icon, target)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals := s.svc.Goals()
	count, saved := s.svc.GoalTotals()
	writeJSON(w, http.StatusOK, goalListResponse{Goals: goals, Count: count, SavedCents: saved})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ok, err := s.svc.DeleteGoal(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "goal_not_found", "no goal with id "+id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleGoalAmount(w, r, s.svc.Deposit)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleGoalAmount(w, r, s.svc.Withdraw)
}

func (s *Server) handleGoalAmount(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id string, amount core.Money) (core.Goal, error)) {
	id := r.PathValue("id")

	var req goalAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "invalid amount")
		return
	}

	g, err := op(r.Context(), id, core.Money{Cents: cents})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateAggregates()
	writeJSON(w, http.StatusOK, g)
}
