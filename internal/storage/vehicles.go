package storage

import (
	"context"
	"fmt"
	"time"

	"genfin/internal/core"
)

const vehicleColumns = `id, account_id, name, brand, model, year,
	market_value_cents, market_variation_pct, documentation_cents, ipva_cents, licensing_cents,
	financing_installments, financing_installment_cents, fuel_km_per_liter, fuel_price_per_liter_cents,
	created_at`

func scanVehicle(row rowScanner) (*core.Vehicle, error) {
	var v core.Vehicle
	err := row.Scan(&v.ID, &v.AccountID, &v.Name, &v.Brand, &v.Model, &v.Year,
		&v.MarketValue.Cents, &v.MarketVariationPct, &v.DocumentationCost.Cents,
		&v.IPVACost.Cents, &v.LicensingCost.Cents,
		&v.FinancingInstallments, &v.FinancingInstallment.Cents,
		&v.FuelKmPerLiter, &v.FuelPricePerLiter.Cents,
		&v.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (r *SQLiteRepository) CreateVehicle(ctx context.Context, v *core.Vehicle) error {
	v.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO vehicles (account_id, name, brand, model, year,
			market_value_cents, market_variation_pct, documentation_cents, ipva_cents, licensing_cents,
			financing_installments, financing_installment_cents, fuel_km_per_liter, fuel_price_per_liter_cents,
			created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.AccountID, v.Name, v.Brand, v.Model, v.Year,
		v.MarketValue.Cents, v.MarketVariationPct, v.DocumentationCost.Cents,
		v.IPVACost.Cents, v.LicensingCost.Cents,
		v.FinancingInstallments, v.FinancingInstallment.Cents,
		v.FuelKmPerLiter, v.FuelPricePerLiter.Cents,
		v.CreatedAt)
	if err != nil {
		return fmt.Errorf("create vehicle: %w", err)
	}
	v.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteRepository) VehicleByID(ctx context.Context, accountID, id int64) (*core.Vehicle, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = ? AND account_id = ?`, id, accountID)
	return scanVehicle(row)
}

func (r *SQLiteRepository) VehiclesByAccount(ctx context.Context, accountID int64) ([]core.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []core.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

func (r *SQLiteRepository) UpdateVehicle(ctx context.Context, v core.Vehicle) error {
	return r.execOwned(ctx, `
		UPDATE vehicles
		SET name = ?, brand = ?, model = ?, year = ?,
			market_value_cents = ?, market_variation_pct = ?, documentation_cents = ?,
			ipva_cents = ?, licensing_cents = ?,
			financing_installments = ?, financing_installment_cents = ?,
			fuel_km_per_liter = ?, fuel_price_per_liter_cents = ?
		WHERE id = ? AND account_id = ?`,
		v.Name, v.Brand, v.Model, v.Year,
		v.MarketValue.Cents, v.MarketVariationPct, v.DocumentationCost.Cents,
		v.IPVACost.Cents, v.LicensingCost.Cents,
		v.FinancingInstallments, v.FinancingInstallment.Cents,
		v.FuelKmPerLiter, v.FuelPricePerLiter.Cents,
		v.ID, v.AccountID)
}

// DeleteVehicle removes the vehicle along with its expenses, frequent
// destinations and trip plans.
func (r *SQLiteRepository) DeleteVehicle(ctx context.Context, accountID, id int64) error {
	return r.execOwned(ctx,
		`DELETE FROM vehicles WHERE id = ? AND account_id = ?`, id, accountID)
}

const vehicleExpenseColumns = `id, account_id, vehicle_id, date, expense_type,
	description, amount_cents, is_recurring, created_at`

func scanVehicleExpense(row rowScanner) (*core.VehicleExpense, error) {
	var (
		e           core.VehicleExpense
		date        string
		expenseType string
	)
	err := row.Scan(&e.ID, &e.AccountID, &e.VehicleID, &date, &expenseType,
		&e.Description, &e.Amount.Cents, &e.IsRecurring, &e.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	e.Date = parseStoredDate(date)
	e.Type = core.VehicleExpenseType(expenseType)
	return &e, nil
}

func (r *SQLiteRepository) CreateVehicleExpense(ctx context.Context, e *core.VehicleExpense) error {
	e.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO vehicle_expenses (account_id, vehicle_id, date, expense_type,
			description, amount_cents, is_recurring, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.AccountID, e.VehicleID, e.Date.String(), string(e.Type),
		e.Description, e.Amount.Cents, e.IsRecurring, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create vehicle expense: %w", err)
	}
	e.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteRepository) VehicleExpensesByVehicle(ctx context.Context, accountID, vehicleID int64) ([]core.VehicleExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+vehicleExpenseColumns+` FROM vehicle_expenses
		WHERE account_id = ? AND vehicle_id = ?
		ORDER BY date, id`,
		accountID, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list vehicle expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.VehicleExpense
	for rows.Next() {
		e, err := scanVehicleExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) DeleteVehicleExpense(ctx context.Context, accountID, id int64) error {
	return r.execOwned(ctx,
		`DELETE FROM vehicle_expenses WHERE id = ? AND account_id = ?`, id, accountID)
}

const destinationColumns = `id, account_id, vehicle_id, name, periodicity,
	distance_km, has_paid_parking, parking_cents, created_at`

func scanDestination(row rowScanner) (*core.FrequentDestination, error) {
	var (
		d           core.FrequentDestination
		periodicity string
	)
	err := row.Scan(&d.ID, &d.AccountID, &d.VehicleID, &d.Name, &periodicity,
		&d.DistanceKm, &d.HasPaidParking, &d.ParkingCost.Cents, &d.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	d.Periodicity = core.Periodicity(periodicity)
	return &d, nil
}

func (r *SQLiteRepository) CreateDestination(ctx context.Context, d *core.FrequentDestination) error {
	d.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO frequent_destinations (account_id, vehicle_id, name, periodicity,
			distance_km, has_paid_parking, parking_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.AccountID, d.VehicleID, d.Name, string(d.Periodicity),
		d.DistanceKm, d.HasPaidParking, d.ParkingCost.Cents, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	d.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteRepository) DestinationByID(ctx context.Context, accountID, id int64) (*core.FrequentDestination, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+destinationColumns+` FROM frequent_destinations WHERE id = ? AND account_id = ?`,
		id, accountID)
	return scanDestination(row)
}

func (r *SQLiteRepository) DestinationsByVehicle(ctx context.Context, accountID, vehicleID int64) ([]core.FrequentDestination, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+destinationColumns+` FROM frequent_destinations
		WHERE account_id = ? AND vehicle_id = ?
		ORDER BY id`,
		accountID, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	defer rows.Close()

	var destinations []core.FrequentDestination
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, err
		}
		destinations = append(destinations, *d)
	}
	return destinations, rows.Err()
}

func (r *SQLiteRepository) UpdateDestination(ctx context.Context, d core.FrequentDestination) error {
	return r.execOwned(ctx, `
		UPDATE frequent_destinations
		SET vehicle_id = ?, name = ?, periodicity = ?, distance_km = ?,
			has_paid_parking = ?, parking_cents = ?
		WHERE id = ? AND account_id = ?`,
		d.VehicleID, d.Name, string(d.Periodicity), d.DistanceKm,
		d.HasPaidParking, d.ParkingCost.Cents, d.ID, d.AccountID)
}

func (r *SQLiteRepository) DeleteDestination(ctx context.Context, accountID, id int64) error {
	return r.execOwned(ctx,
		`DELETE FROM frequent_destinations WHERE id = ? AND account_id = ?`, id, accountID)
}
