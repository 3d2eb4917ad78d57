package services

import (
	"context"

	"genfin/internal/core"
)

// TripStore is the persistence slice used by TripService.
type TripStore interface {
	CreateTrip(ctx context.Context, t *core.TripPlan) error
	TripByID(ctx context.Context, accountID, id int64) (*core.TripPlan, error)
	TripsByAccount(ctx context.Context, accountID int64) ([]core.TripPlan, error)
	UpdateTrip(ctx context.Context, t core.TripPlan) error
	DeleteTrip(ctx context.Context, accountID, id int64) error
	VehicleByID(ctx context.Context, accountID, id int64) (*core.Vehicle, error)
}

// TripService manages planned trips and prices them with the vehicle's
// fuel consumption.
type TripService struct {
	store TripStore
}

func NewTripService(store TripStore) *TripService {
	return &TripService{store: store}
}

func (s *TripService) Create(ctx context.Context, t core.TripPlan) (*core.TripPlan, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.VehicleByID(ctx, t.AccountID, t.VehicleID); err != nil {
		return nil, err
	}
	if err := s.store.CreateTrip(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TripService) Trip(ctx context.Context, accountID, id int64) (*core.TripPlan, error) {
	return s.store.TripByID(ctx, accountID, id)
}

func (s *TripService) Trips(ctx context.Context, accountID int64) ([]core.TripPlan, error) {
	return s.store.TripsByAccount(ctx, accountID)
}

func (s *TripService) Update(ctx context.Context, t core.TripPlan) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.store.UpdateTrip(ctx, t)
}

func (s *TripService) Delete(ctx context.Context, accountID, id int64) error {
	return s.store.DeleteTrip(ctx, accountID, id)
}

// TripCost is the simulated cost of a trip: fuel for the round trip,
// the listed tolls (each entry is one passage), lodging, meals and
// extras.
type TripCost struct {
	Trip    core.TripPlan `json:"trip"`
	Fuel    core.Money    `json:"fuel"`
	Tolls   core.Money    `json:"tolls"`
	Lodging core.Money    `json:"lodging"`
	Meals   core.Money    `json:"meals"`
	Extras  core.Money    `json:"extras"`
	Total   core.Money    `json:"total"`
}

// Simulate prices a stored trip with its vehicle's consumption.
func (s *TripService) Simulate(ctx context.Context, accountID, tripID int64) (*TripCost, error) {
	trip, err := s.store.TripByID(ctx, accountID, tripID)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.store.VehicleByID(ctx, accountID, trip.VehicleID)
	if err != nil {
		return nil, err
	}
	cost := Price(*trip, *vehicle)
	return &cost, nil
}

// Price computes the cost breakdown of a trip without touching storage.
func Price(trip core.TripPlan, vehicle core.Vehicle) TripCost {
	cost := TripCost{
		Trip:    trip,
		Fuel:    core.Money{Cents: fuelCostCents(vehicle, 2 * trip.DistanceKm)},
		Lodging: trip.LodgingCost,
		Meals:   trip.MealCost,
		Extras:  trip.ExtraCost,
	}
	for _, toll := range trip.Tolls {
		cost.Tolls.Cents += toll.Amount.Cents
	}
	cost.Total = core.Money{Cents: cost.Fuel.Cents + cost.Tolls.Cents +
		cost.Lodging.Cents + cost.Meals.Cents + cost.Extras.Cents}
	return cost
}
