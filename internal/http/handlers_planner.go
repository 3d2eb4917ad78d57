package http

import (
	"net/http"

	"genfin/internal/core"
)

func (s *Server) handlePlannedExpenseList(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.planner.Expenses(r.Context(), accountFrom(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

func (s *Server) handlePlannedExpenseCreate(w http.ResponseWriter, r *http.Request) {
	var expense core.PlannedExpense
	if err := decodeJSON(r, &expense); err != nil {
		respondError(w, r, err)
		return
	}
	expense.AccountID = accountFrom(r).ID
	created, err := s.planner.CreateExpense(r.Context(), expense)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePlannedExpenseUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var expense core.PlannedExpense
	if err := decodeJSON(r, &expense); err != nil {
		respondError(w, r, err)
		return
	}
	expense.ID = id
	expense.AccountID = accountFrom(r).ID
	if err := s.planner.UpdateExpense(r.Context(), expense); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, expense)
}

func (s *Server) handlePlannedExpenseDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.planner.DeleteExpense(r.Context(), accountFrom(r).ID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

type paidRequest struct {
	Paid bool `json:"paid"`
}

func (s *Server) handlePlannedExpensePaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req paidRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.planner.SetExpensePaid(r.Context(), accountFrom(r).ID, id, req.Paid); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handlePlannedIncomeList(w http.ResponseWriter, r *http.Request) {
	incomes, err := s.planner.Incomes(r.Context(), accountFrom(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, incomes)
}

func (s *Server) handlePlannedIncomeCreate(w http.ResponseWriter, r *http.Request) {
	var income core.PlannedIncome
	if err := decodeJSON(r, &income); err != nil {
		respondError(w, r, err)
		return
	}
	income.AccountID = accountFrom(r).ID
	created, err := s.planner.CreateIncome(r.Context(), income)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePlannedIncomeUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var income core.PlannedIncome
	if err := decodeJSON(r, &income); err != nil {
		respondError(w, r, err)
		return
	}
	income.ID = id
	income.AccountID = accountFrom(r).ID
	if err := s.planner.UpdateIncome(r.Context(), income); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, income)
}

func (s *Server) handlePlannedIncomeDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.planner.DeleteIncome(r.Context(), accountFrom(r).ID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handlePlannedReserveList(w http.ResponseWriter, r *http.Request) {
	reserves, err := s.planner.Reserves(r.Context(), accountFrom(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reserves)
}

func (s *Server) handlePlannedReserveCreate(w http.ResponseWriter, r *http.Request) {
	var reserve core.PlannedReserve
	if err := decodeJSON(r, &reserve); err != nil {
		respondError(w, r, err)
		return
	}
	reserve.AccountID = accountFrom(r).ID
	created, err := s.planner.CreateReserve(r.Context(), reserve)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePlannedReserveUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var reserve core.PlannedReserve
	if err := decodeJSON(r, &reserve); err != nil {
		respondError(w, r, err)
		return
	}
	reserve.ID = id
	reserve.AccountID = accountFrom(r).ID
	if err := s.planner.UpdateReserve(r.Context(), reserve); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reserve)
}

func (s *Server) handlePlannedReserveDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.planner.DeleteReserve(r.Context(), accountFrom(r).ID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}
