package http

import (
	"fmt"
	"net/http"
	"strconv"

	"genfin/internal/core"
)

func overviewKey(accountID int64, year, month int) string {
	return fmt.Sprintf("overview:%d:%04d-%02d", accountID, year, month)
}

func (s *Server) invalidateOverview(accountID int64, d core.Date) {
	s.overviewCache.Delete(overviewKey(accountID, d.Year(), int(d.Month())))
}

func (s *Server) handleEntryList(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthParams(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	entries, err := s.entries.ByMonth(r.Context(), accountFrom(r).ID, year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleEntryCreate(w http.ResponseWriter, r *http.Request) {
	var entry core.FinancialEntry
	if err := decodeJSON(r, &entry); err != nil {
		respondError(w, r, err)
		return
	}
	entry.AccountID = accountFrom(r).ID
	created, err := s.entries.Record(r.Context(), entry)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateOverview(created.AccountID, created.Date)
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleEntryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var entry core.FinancialEntry
	if err := decodeJSON(r, &entry); err != nil {
		respondError(w, r, err)
		return
	}
	entry.ID = id
	entry.AccountID = accountFrom(r).ID

	before, err := s.entries.ByID(r.Context(), entry.AccountID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.entries.Update(r.Context(), entry); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateOverview(entry.AccountID, before.Date)
	s.invalidateOverview(entry.AccountID, entry.Date)
	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleEntryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	accountID := accountFrom(r).ID
	before, err := s.entries.ByID(r.Context(), accountID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.entries.Delete(r.Context(), accountID, id); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateOverview(accountID, before.Date)
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthParams(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	accountID := accountFrom(r).ID

	key := overviewKey(accountID, year, month)
	if cached, ok := s.overviewCache.Get(key); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}
	overview, err := s.entries.Overview(r.Context(), accountID, year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.overviewCache.Set(key, overview)
	respondJSON(w, http.StatusOK, overview)
}

// spanParam reads an integer window size query parameter such as
// ?months= or ?weeks=, bounded to 1..max.
func spanParam(r *http.Request, name string, fallback, max int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 1 || parsed > max {
		return 0, errBadRequest
	}
	return parsed, nil
}

func (s *Server) handleStatsMonthly(w http.ResponseWriter, r *http.Request) {
	months, err := spanParam(r, "months", 6, 60)
	if err != nil {
		respondError(w, r, err)
		return
	}
	history, err := s.entries.History(r.Context(), accountFrom(r).ID, months)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleStatsWeekly(w http.ResponseWriter, r *http.Request) {
	weeks, err := spanParam(r, "weeks", 8, 52)
	if err != nil {
		respondError(w, r, err)
		return
	}
	history, err := s.entries.Weekly(r.Context(), accountFrom(r).ID, weeks)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleStatsDaily(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthParams(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	history, err := s.entries.Daily(r.Context(), accountFrom(r).ID, year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}
