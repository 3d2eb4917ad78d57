package core

import (
	"errors"
	"strings"
	"time"
)

// Vehicle carries the inputs of the total-cost-of-ownership calculator:
// market value and its yearly variation, fixed yearly costs, financing
// and fuel consumption.
type Vehicle struct {
	ID                    int64     `json:"id"`
	AccountID             int64     `json:"-"`
	Name                  string    `json:"name"`
	Brand                 string    `json:"brand,omitempty"`
	Model                 string    `json:"model,omitempty"`
	Year                  int       `json:"year,omitempty"`
	MarketValue           Money     `json:"market_value"`
	MarketVariationPct    float64   `json:"market_variation_percent"`
	DocumentationCost     Money     `json:"documentation_cost"`
	IPVACost              Money     `json:"ipva_cost"`
	LicensingCost         Money     `json:"licensing_cost"`
	FinancingInstallments int       `json:"financing_remaining_installments"`
	FinancingInstallment  Money     `json:"financing_installment_value"`
	FuelKmPerLiter        float64   `json:"fuel_km_per_liter"`
	FuelPricePerLiter     Money     `json:"fuel_price_per_liter"`
	CreatedAt             time.Time `json:"created_at"`
}

var ErrEmptyName = errors.New("name is required")

func (v Vehicle) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return ErrEmptyName
	}
	if v.MarketValue.Cents < 0 || v.FuelKmPerLiter < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// VehicleExpenseType categorizes vehicle expenses.
type VehicleExpenseType string

const (
	VehicleFuel        VehicleExpenseType = "FUEL"
	VehicleMaintenance VehicleExpenseType = "MAINTENANCE"
	VehicleInsurance   VehicleExpenseType = "INSURANCE"
	VehicleToll        VehicleExpenseType = "TOLL"
	VehicleParking     VehicleExpenseType = "PARKING"
	VehicleOther       VehicleExpenseType = "OTHER"
)

// VehicleExpense is a recorded cost tied to a vehicle.
type VehicleExpense struct {
	ID          int64              `json:"id"`
	AccountID   int64              `json:"-"`
	VehicleID   int64              `json:"vehicle_id"`
	Date        Date               `json:"date"`
	Type        VehicleExpenseType `json:"expense_type"`
	Description string             `json:"description"`
	Amount      Money              `json:"amount"`
	IsRecurring bool               `json:"is_recurring"`
	CreatedAt   time.Time          `json:"created_at"`
}

var ErrInvalidExpenseType = errors.New("invalid vehicle expense type")

func (e VehicleExpense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	switch e.Type {
	case VehicleFuel, VehicleMaintenance, VehicleInsurance, VehicleToll, VehicleParking, VehicleOther:
	default:
		return ErrInvalidExpenseType
	}
	if e.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Periodicity says how often a frequent destination is visited.
type Periodicity string

const (
	PeriodDaily    Periodicity = "DAILY"
	PeriodWeekly   Periodicity = "WEEKLY"
	PeriodBiweekly Periodicity = "BIWEEKLY"
	PeriodMonthly  Periodicity = "MONTHLY"
)

// TripsPerMonth is the factor used when projecting commute costs.
func (p Periodicity) TripsPerMonth() int {
	switch p {
	case PeriodDaily:
		return 30
	case PeriodWeekly:
		return 4
	case PeriodBiweekly:
		return 2
	case PeriodMonthly:
		return 1
	}
	return 0
}

// FrequentDestination is a recurring drive used to project monthly fuel
// and parking costs.
type FrequentDestination struct {
	ID            int64       `json:"id"`
	AccountID     int64       `json:"-"`
	VehicleID     int64       `json:"vehicle_id"`
	Name          string      `json:"name"`
	Periodicity   Periodicity `json:"periodicity"`
	DistanceKm    float64     `json:"distance_km"`
	HasPaidParking bool       `json:"has_paid_parking"`
	ParkingCost   Money       `json:"parking_cost"`
	CreatedAt     time.Time   `json:"created_at"`
}

var ErrInvalidPeriodicity = errors.New("invalid periodicity")

func (d FrequentDestination) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if d.Periodicity.TripsPerMonth() == 0 {
		return ErrInvalidPeriodicity
	}
	if d.DistanceKm < 0 {
		return errors.New("distance cannot be negative")
	}
	return nil
}
