package storage

import (
	"context"
	"fmt"
	"time"

	"genfin/internal/core"
)

const plannedExpenseColumns = `id, account_id, date, category, description,
	amount_cents, is_recurring, is_paid, source_key, created_at`

func scanPlannedExpense(row rowScanner) (*core.PlannedExpense, error) {
	var (
		p    core.PlannedExpense
		date string
	)
	err := row.Scan(&p.ID, &p.AccountID, &date, &p.Category, &p.Description,
		&p.Amount.Cents, &p.IsRecurring, &p.IsPaid, &p.SourceKey, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	p.Date = parseStoredDate(date)
	return &p, nil
}

func (r *SQLiteRepository) collectPlannedExpenses(ctx context.Context, query string, args ...any) ([]core.PlannedExpense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list planned expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.PlannedExpense
	for rows.Next() {
		p, err := scanPlannedExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *p)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) CreatePlannedExpense(ctx context.Context, p *core.PlannedExpense) error {
	p.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO planned_expenses (account_id, date, category, description,
			amount_cents, is_recurring, is_paid, source_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.AccountID, p.Date.String(), p.Category, p.Description,
		p.Amount.Cents, p.IsRecurring, p.IsPaid, p.SourceKey, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create planned expense: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteRepository) UpdatePlannedExpense(ctx context.Context, p core.PlannedExpense) error {
	return r.execOwned(ctx, `
		UPDATE planned_expenses
		SET date = ?, category = ?, description = ?, amount_cents = ?,
			is_recurring = ?, is_paid = ?, source_key = ?
		WHERE id = ? AND account_id = ?`,
		p.Date.String(), p.Category, p.Description, p.Amount.Cents,
		p.IsRecurring, p.IsPaid, p.SourceKey, p.ID, p.AccountID)
}

func (r *SQLiteRepository) DeletePlannedExpense(ctx context.Context, accountID, id int64) error {
	return r.execOwned(ctx,
		`DELETE FROM planned_expenses WHERE id = ? AND account_id = ?`, id, accountID)
}

func (r *SQLiteRepository) PlannedExpenseByID(ctx context.Context, accountID, id int64) (*core.PlannedExpense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+plannedExpenseColumns+` FROM planned_expenses WHERE id = ? AND account_id = ?`,
		id, accountID)
	return scanPlannedExpense(row)
}

func (r *SQLiteRepository) PlannedExpensesByAccount(ctx context.Context, accountID int64) ([]core.PlannedExpense, error) {
	return r.collectPlannedExpenses(ctx,
		`SELECT `+plannedExpenseColumns+` FROM planned_expenses WHERE account_id = ? ORDER BY date, id`,
		accountID)
}

func (r *SQLiteRepository) PlannedExpensesByMonth(ctx context.Context, accountID int64, year, month int) ([]core.PlannedExpense, error) {
	first, next := monthRange(year, month)
	return r.collectPlannedExpenses(ctx, `
		SELECT `+plannedExpenseColumns+` FROM planned_expenses
		WHERE account_id = ? AND date >= ? AND date < ?
		ORDER BY date, id`,
		accountID, first, next)
}

// PlannedExpensesBySourcePrefix lists the synthetic bills whose source
// key starts with prefix.
func (r *SQLiteRepository) PlannedExpensesBySourcePrefix(ctx context.Context, accountID int64, prefix string) ([]core.PlannedExpense, error) {
	return r.collectPlannedExpenses(ctx, `
		SELECT `+plannedExpenseColumns+` FROM planned_expenses
		WHERE account_id = ? AND source_key <> '' AND source_key LIKE ? || '%'
		ORDER BY date, id`,
		accountID, prefix)
}

func (r *SQLiteRepository) SetPlannedExpensePaid(ctx context.Context, accountID, id int64, paid bool) error {
	return r.execOwned(ctx,
		`UPDATE planned_expenses SET is_paid = ? WHERE id = ? AND account_id = ?`,
		paid, id, accountID)
}

const plannedFlowColumns = `id, account_id, date, category, description,
	amount_cents, is_recurring, created_at`

func (r *SQLiteRepository) CreatePlannedIncome(ctx context.Context, p *core.PlannedIncome) error {
	p.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO planned_incomes (account_id, date, category, description, amount_cents, is_recurring, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.AccountID, p.Date.String(), p.Category, p.Description, p.Amount.Cents, p.IsRecurring, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create planned income: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteRepository) PlannedIncomesByAccount(ctx context.Context, accountID int64) ([]core.PlannedIncome, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+plannedFlowColumns+` FROM planned_incomes WHERE account_id = ? ORDER BY date, id`,
		accountID)
	if err != nil {
		return nil, fmt.Errorf("list planned incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.PlannedIncome
	for rows.Next() {
		var (
			p    core.PlannedIncome
			date string
		)
		if err := rows.Scan(&p.ID, &p.AccountID, &date, &p.Category, &p.Description,
			&p.Amount.Cents, &p.IsRecurring, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Date = parseStoredDate(date)
		incomes = append(incomes, p)
	}
	return incomes, rows.Err()
}

func (r *SQLiteRepository) UpdatePlannedIncome(ctx context.Context, p core.PlannedIncome) error {
	return r.execOwned(ctx, `
		UPDATE planned_incomes
		SET date = ?, category = ?, description = ?, amount_cents = ?, is_recurring = ?
		WHERE id = ? AND account_id = ?`,
		p.Date.String(), p.Category, p.Description, p.Amount.Cents, p.IsRecurring, p.ID, p.AccountID)
}

func (r *SQLiteRepository) DeletePlannedIncome(ctx context.Context, accountID, id int64) error {
	return r.execOwned(ctx,
		`DELETE FROM planned_incomes WHERE id = ? AND account_id = ?`, id, accountID)
}

func (r *SQLiteRepository) CreatePlannedReserve(ctx context.Context, p *core.PlannedReserve) error {
	p.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO planned_reserves (account_id, date, category, description, amount_cents, is_recurring, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.AccountID, p.Date.String(), p.Category, p.Description, p.Amount.Cents, p.IsRecurring, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create planned reserve: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteRepository) PlannedReservesByAccount(ctx context.Context, accountID int64) ([]core.PlannedReserve, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+plannedFlowColumns+` FROM planned_reserves WHERE account_id = ? ORDER BY date, id`,
		accountID)
	if err != nil {
		return nil, fmt.Errorf("list planned reserves: %w", err)
	}
	defer rows.Close()

	var reserves []core.PlannedReserve
	for rows.Next() {
		var (
			p    core.PlannedReserve
			date string
		)
		if err := rows.Scan(&p.ID, &p.AccountID, &date, &p.Category, &p.Description,
			&p.Amount.Cents, &p.IsRecurring, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Date = parseStoredDate(date)
		reserves = append(reserves, p)
	}
	return reserves, rows.Err()
}

func (r *SQLiteRepository) UpdatePlannedReserve(ctx context.Context, p core.PlannedReserve) error {
	return r.execOwned(ctx, `
		UPDATE planned_reserves
		SET date = ?, category = ?, description = ?, amount_cents = ?, is_recurring = ?
		WHERE id = ? AND account_id = ?`,
		p.Date.String(), p.Category, p.Description, p.Amount.Cents, p.IsRecurring, p.ID, p.AccountID)
}

func (r *SQLiteRepository) DeletePlannedReserve(ctx context.Context, accountID, id int64) error {
	return r.execOwned(ctx,
		`DELETE FROM planned_reserves WHERE id = ? AND account_id = ?`, id, accountID)
}
