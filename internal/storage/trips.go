package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"genfin/internal/core"
)

const tripColumns = `id, account_id, vehicle_id, title, date, distance_km,
	lodging_cents, meal_cents, extra_cents, created_at`

func scanTrip(row rowScanner) (*core.TripPlan, error) {
	var (
		t    core.TripPlan
		date string
	)
	err := row.Scan(&t.ID, &t.AccountID, &t.VehicleID, &t.Title, &date, &t.DistanceKm,
		&t.LodgingCost.Cents, &t.MealCost.Cents, &t.ExtraCost.Cents, &t.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	t.Date = parseStoredDate(date)
	return &t, nil
}

// CreateTrip stores the trip and its tolls atomically.
func (r *SQLiteRepository) CreateTrip(ctx context.Context, t *core.TripPlan) error {
	t.CreatedAt = time.Now().UTC()
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO trip_plans (account_id, vehicle_id, title, date, distance_km,
				lodging_cents, meal_cents, extra_cents, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.AccountID, t.VehicleID, t.Title, t.Date.String(), t.DistanceKm,
			t.LodgingCost.Cents, t.MealCost.Cents, t.ExtraCost.Cents, t.CreatedAt)
		if err != nil {
			return fmt.Errorf("create trip: %w", err)
		}
		if t.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		return insertTolls(ctx, tx, t.ID, t.Tolls)
	})
}

func (r *SQLiteRepository) TripByID(ctx context.Context, accountID, id int64) (*core.TripPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tripColumns+` FROM trip_plans WHERE id = ? AND account_id = ?`, id, accountID)
	t, err := scanTrip(row)
	if err != nil {
		return nil, err
	}
	if t.Tolls, err = r.tollsByTrip(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *SQLiteRepository) TripsByAccount(ctx context.Context, accountID int64) ([]core.TripPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tripColumns+` FROM trip_plans WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []core.TripPlan
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range trips {
		if trips[i].Tolls, err = r.tollsByTrip(ctx, trips[i].ID); err != nil {
			return nil, err
		}
	}
	return trips, nil
}

// UpdateTrip rewrites the trip row and replaces its toll list.
func (r *SQLiteRepository) UpdateTrip(ctx context.Context, t core.TripPlan) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE trip_plans
			SET vehicle_id = ?, title = ?, date = ?, distance_km = ?,
				lodging_cents = ?, meal_cents = ?, extra_cents = ?
			WHERE id = ? AND account_id = ?`,
			t.VehicleID, t.Title, t.Date.String(), t.DistanceKm,
			t.LodgingCost.Cents, t.MealCost.Cents, t.ExtraCost.Cents,
			t.ID, t.AccountID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM trip_tolls WHERE trip_id = ?`, t.ID); err != nil {
			return err
		}
		return insertTolls(ctx, tx, t.ID, t.Tolls)
	})
}

func (r *SQLiteRepository) DeleteTrip(ctx context.Context, accountID, id int64) error {
	return r.execOwned(ctx,
		`DELETE FROM trip_plans WHERE id = ? AND account_id = ?`, id, accountID)
}

func (r *SQLiteRepository) tollsByTrip(ctx context.Context, tripID int64) ([]core.TripToll, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, trip_id, name, amount_cents FROM trip_tolls WHERE trip_id = ? ORDER BY id`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list tolls: %w", err)
	}
	defer rows.Close()

	var tolls []core.TripToll
	for rows.Next() {
		var toll core.TripToll
		if err := rows.Scan(&toll.ID, &toll.TripID, &toll.Name, &toll.Amount.Cents); err != nil {
			return nil, err
		}
		tolls = append(tolls, toll)
	}
	return tolls, rows.Err()
}

func insertTolls(ctx context.Context, tx *sql.Tx, tripID int64, tolls []core.TripToll) error {
	for _, toll := range tolls {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO trip_tolls (trip_id, name, amount_cents) VALUES (?, ?, ?)`,
			tripID, toll.Name, toll.Amount.Cents)
		if err != nil {
			return fmt.Errorf("insert toll: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
