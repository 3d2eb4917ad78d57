package core

import (
	"strings"
	"time"
)

// TripPlan simulates the cost of a one-off trip with a given vehicle.
type TripPlan struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"-"`
	VehicleID   int64     `json:"vehicle_id"`
	Title       string    `json:"title"`
	Date        Date      `json:"date,omitempty"`
	DistanceKm  float64   `json:"distance_km"`
	LodgingCost Money     `json:"lodging_cost"`
	MealCost    Money     `json:"meal_cost"`
	ExtraCost   Money     `json:"extra_cost"`
	Tolls       []TripToll `json:"tolls"`
	CreatedAt   time.Time `json:"created_at"`
}

func (t TripPlan) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyName
	}
	if t.DistanceKm < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// TripToll is one toll booth on a trip route.
type TripToll struct {
	ID     int64  `json:"id"`
	TripID int64  `json:"-"`
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}
