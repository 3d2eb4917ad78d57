package services

import (
	"context"
	"math"

	"genfin/internal/core"
)

// VehicleStore is the persistence slice used by VehicleService.
type VehicleStore interface {
	CreateVehicle(ctx context.Context, v *core.Vehicle) error
	VehicleByID(ctx context.Context, accountID, id int64) (*core.Vehicle, error)
	VehiclesByAccount(ctx context.Context, accountID int64) ([]core.Vehicle, error)
	UpdateVehicle(ctx context.Context, v core.Vehicle) error
	DeleteVehicle(ctx context.Context, accountID, id int64) error

	CreateVehicleExpense(ctx context.Context, e *core.VehicleExpense) error
	VehicleExpensesByVehicle(ctx context.Context, accountID, vehicleID int64) ([]core.VehicleExpense, error)
	DeleteVehicleExpense(ctx context.Context, accountID, id int64) error

	CreateDestination(ctx context.Context, d *core.FrequentDestination) error
	DestinationByID(ctx context.Context, accountID, id int64) (*core.FrequentDestination, error)
	DestinationsByVehicle(ctx context.Context, accountID, vehicleID int64) ([]core.FrequentDestination, error)
	UpdateDestination(ctx context.Context, d core.FrequentDestination) error
	DeleteDestination(ctx context.Context, accountID, id int64) error
}

// VehicleService manages vehicles, their expense log, frequent
// destinations and the monthly cost-of-ownership projection.
type VehicleService struct {
	store VehicleStore
}

func NewVehicleService(store VehicleStore) *VehicleService {
	return &VehicleService{store: store}
}

func (s *VehicleService) Create(ctx context.Context, v core.Vehicle) (*core.Vehicle, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateVehicle(ctx, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *VehicleService) Vehicle(ctx context.Context, accountID, id int64) (*core.Vehicle, error) {
	return s.store.VehicleByID(ctx, accountID, id)
}

func (s *VehicleService) Vehicles(ctx context.Context, accountID int64) ([]core.Vehicle, error) {
	return s.store.VehiclesByAccount(ctx, accountID)
}

func (s *VehicleService) Update(ctx context.Context, v core.Vehicle) error {
	if err := v.Validate(); err != nil {
		return err
	}
	return s.store.UpdateVehicle(ctx, v)
}

func (s *VehicleService) Delete(ctx context.Context, accountID, id int64) error {
	return s.store.DeleteVehicle(ctx, accountID, id)
}

func (s *VehicleService) AddExpense(ctx context.Context, e core.VehicleExpense) (*core.VehicleExpense, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.VehicleByID(ctx, e.AccountID, e.VehicleID); err != nil {
		return nil, err
	}
	if err := s.store.CreateVehicleExpense(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *VehicleService) Expenses(ctx context.Context, accountID, vehicleID int64) ([]core.VehicleExpense, error) {
	return s.store.VehicleExpensesByVehicle(ctx, accountID, vehicleID)
}

func (s *VehicleService) DeleteExpense(ctx context.Context, accountID, id int64) error {
	return s.store.DeleteVehicleExpense(ctx, accountID, id)
}

func (s *VehicleService) AddDestination(ctx context.Context, d core.FrequentDestination) (*core.FrequentDestination, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.VehicleByID(ctx, d.AccountID, d.VehicleID); err != nil {
		return nil, err
	}
	if err := s.store.CreateDestination(ctx, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *VehicleService) Destinations(ctx context.Context, accountID, vehicleID int64) ([]core.FrequentDestination, error) {
	return s.store.DestinationsByVehicle(ctx, accountID, vehicleID)
}

func (s *VehicleService) UpdateDestination(ctx context.Context, d core.FrequentDestination) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return s.store.UpdateDestination(ctx, d)
}

func (s *VehicleService) DeleteDestination(ctx context.Context, accountID, id int64) error {
	return s.store.DeleteDestination(ctx, accountID, id)
}

// CostBreakdown is the projected monthly cost of owning a vehicle.
type CostBreakdown struct {
	Vehicle      core.Vehicle `json:"vehicle"`
	Depreciation core.Money   `json:"depreciation"`
	FixedCosts   core.Money   `json:"fixed_costs"`
	Financing    core.Money   `json:"financing"`
	Commute      core.Money   `json:"commute"`
	Total        core.Money   `json:"total"`
}

// MonthlyCost projects one month of ownership: market depreciation,
// yearly fixed costs spread over twelve months, the financing installment
// while any remain, and the fuel plus parking of every frequent
// destination.
func (s *VehicleService) MonthlyCost(ctx context.Context, accountID, vehicleID int64) (*CostBreakdown, error) {
	vehicle, err := s.store.VehicleByID(ctx, accountID, vehicleID)
	if err != nil {
		return nil, err
	}
	destinations, err := s.store.DestinationsByVehicle(ctx, accountID, vehicleID)
	if err != nil {
		return nil, err
	}

	breakdown := &CostBreakdown{Vehicle: *vehicle}
	breakdown.Depreciation = core.Money{Cents: roundCents(
		float64(vehicle.MarketValue.Cents) * math.Abs(vehicle.MarketVariationPct) / 100 / 12)}
	breakdown.FixedCosts = core.Money{Cents: roundCents(float64(
		vehicle.DocumentationCost.Cents+vehicle.IPVACost.Cents+vehicle.LicensingCost.Cents) / 12)}
	if vehicle.FinancingInstallments > 0 {
		breakdown.Financing = vehicle.FinancingInstallment
	}

	var commute int64
	for _, d := range destinations {
		commute += destinationMonthlyCost(*vehicle, d)
	}
	breakdown.Commute = core.Money{Cents: commute}

	breakdown.Total = core.Money{Cents: breakdown.Depreciation.Cents +
		breakdown.FixedCosts.Cents + breakdown.Financing.Cents + breakdown.Commute.Cents}
	return breakdown, nil
}

// destinationMonthlyCost projects one destination: round trips per month
// times fuel for the round trip, plus parking when the spot is paid.
func destinationMonthlyCost(v core.Vehicle, d core.FrequentDestination) int64 {
	trips := int64(d.Periodicity.TripsPerMonth())
	perTrip := fuelCostCents(v, 2*d.DistanceKm)
	if d.HasPaidParking {
		perTrip += d.ParkingCost.Cents
	}
	return trips * perTrip
}

// fuelCostCents prices a distance with the vehicle's consumption. An
// unknown consumption prices as zero rather than dividing by it.
func fuelCostCents(v core.Vehicle, distanceKm float64) int64 {
	if v.FuelKmPerLiter <= 0 {
		return 0
	}
	liters := distanceKm / v.FuelKmPerLiter
	return roundCents(liters * float64(v.FuelPricePerLiter.Cents))
}

func roundCents(f float64) int64 {
	return int64(math.Round(f))
}
