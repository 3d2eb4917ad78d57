package http

import (
	"net/http"

	"genfin/internal/core"
)

func (s *Server) handleTripList(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.Trips(r.Context(), accountFrom(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trips)
}

func (s *Server) handleTripGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	trip, err := s.trips.Trip(r.Context(), accountFrom(r).ID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

func (s *Server) handleTripCreate(w http.ResponseWriter, r *http.Request) {
	var trip core.TripPlan
	if err := decodeJSON(r, &trip); err != nil {
		respondError(w, r, err)
		return
	}
	trip.AccountID = accountFrom(r).ID
	created, err := s.trips.Create(r.Context(), trip)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleTripUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var trip core.TripPlan
	if err := decodeJSON(r, &trip); err != nil {
		respondError(w, r, err)
		return
	}
	trip.ID = id
	trip.AccountID = accountFrom(r).ID
	if err := s.trips.Update(r.Context(), trip); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

func (s *Server) handleTripDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.trips.Delete(r.Context(), accountFrom(r).ID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleTripCost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	cost, err := s.trips.Simulate(r.Context(), accountFrom(r).ID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cost)
}
