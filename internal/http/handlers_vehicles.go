package http

import (
	"net/http"

	"genfin/internal/core"
)

func (s *Server) handleVehicleList(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.vehicles.Vehicles(r.Context(), accountFrom(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, vehicles)
}

func (s *Server) handleVehicleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	vehicle, err := s.vehicles.Vehicle(r.Context(), accountFrom(r).ID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, vehicle)
}

func (s *Server) handleVehicleCreate(w http.ResponseWriter, r *http.Request) {
	var vehicle core.Vehicle
	if err := decodeJSON(r, &vehicle); err != nil {
		respondError(w, r, err)
		return
	}
	vehicle.AccountID = accountFrom(r).ID
	created, err := s.vehicles.Create(r.Context(), vehicle)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleVehicleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var vehicle core.Vehicle
	if err := decodeJSON(r, &vehicle); err != nil {
		respondError(w, r, err)
		return
	}
	vehicle.ID = id
	vehicle.AccountID = accountFrom(r).ID
	if err := s.vehicles.Update(r.Context(), vehicle); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, vehicle)
}

func (s *Server) handleVehicleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.vehicles.Delete(r.Context(), accountFrom(r).ID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleVehicleCost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	breakdown, err := s.vehicles.MonthlyCost(r.Context(), accountFrom(r).ID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, breakdown)
}

func (s *Server) handleVehicleExpenseList(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	expenses, err := s.vehicles.Expenses(r.Context(), accountFrom(r).ID, vehicleID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleVehicleExpenseCreate(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var expense core.VehicleExpense
	if err := decodeJSON(r, &expense); err != nil {
		respondError(w, r, err)
		return
	}
	expense.VehicleID = vehicleID
	expense.AccountID = accountFrom(r).ID
	created, err := s.vehicles.AddExpense(r.Context(), expense)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleVehicleExpenseDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.vehicles.DeleteExpense(r.Context(), accountFrom(r).ID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleDestinationList(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	destinations, err := s.vehicles.Destinations(r.Context(), accountFrom(r).ID, vehicleID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, destinations)
}

func (s *Server) handleDestinationCreate(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var destination core.FrequentDestination
	if err := decodeJSON(r, &destination); err != nil {
		respondError(w, r, err)
		return
	}
	destination.VehicleID = vehicleID
	destination.AccountID = accountFrom(r).ID
	created, err := s.vehicles.AddDestination(r.Context(), destination)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDestinationUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var destination core.FrequentDestination
	if err := decodeJSON(r, &destination); err != nil {
		respondError(w, r, err)
		return
	}
	destination.ID = id
	destination.AccountID = accountFrom(r).ID
	if err := s.vehicles.UpdateDestination(r.Context(), destination); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, destination)
}

func (s *Server) handleDestinationDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.vehicles.DeleteDestination(r.Context(), accountFrom(r).ID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}
