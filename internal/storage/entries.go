package storage

import (
	"context"
	"fmt"
	"time"

	"genfin/internal/core"
)

func (r *SQLiteRepository) CreateEntry(ctx context.Context, e *core.FinancialEntry) error {
	e.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO financial_entries (account_id, entry_type, date, category, amount_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.AccountID, string(e.Type), e.Date.String(), e.Category, e.Amount.Cents, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	e.ID, err = res.LastInsertId()
	return err
}

func scanEntry(row rowScanner) (*core.FinancialEntry, error) {
	var (
		e         core.FinancialEntry
		entryType string
		date      string
	)
	err := row.Scan(&e.ID, &e.AccountID, &entryType, &date, &e.Category, &e.Amount.Cents, &e.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	e.Type = core.EntryType(entryType)
	e.Date = parseStoredDate(date)
	return &e, nil
}

const entryColumns = `id, account_id, entry_type, date, category, amount_cents, created_at`

func (r *SQLiteRepository) EntryByID(ctx context.Context, accountID, id int64) (*core.FinancialEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM financial_entries WHERE id = ? AND account_id = ?`, id, accountID)
	return scanEntry(row)
}

func (r *SQLiteRepository) EntriesByMonth(ctx context.Context, accountID int64, year, month int) ([]core.FinancialEntry, error) {
	first, next := monthRange(year, month)
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM financial_entries
		WHERE account_id = ? AND date >= ? AND date < ?
		ORDER BY date, id`,
		accountID, first, next)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []core.FinancialEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRepository) UpdateEntry(ctx context.Context, e core.FinancialEntry) error {
	return r.execOwned(ctx, `
		UPDATE financial_entries
		SET entry_type = ?, date = ?, category = ?, amount_cents = ?
		WHERE id = ? AND account_id = ?`,
		string(e.Type), e.Date.String(), e.Category, e.Amount.Cents, e.ID, e.AccountID)
}

func (r *SQLiteRepository) DeleteEntry(ctx context.Context, accountID, id int64) error {
	return r.execOwned(ctx,
		`DELETE FROM financial_entries WHERE id = ? AND account_id = ?`, id, accountID)
}

// MonthTotals sums one month's incomes and expenses.
func (r *SQLiteRepository) MonthTotals(ctx context.Context, accountID int64, year, month int) (income, expense core.Money, err error) {
	first, next := monthRange(year, month)
	rows, err := r.db.QueryContext(ctx, `
		SELECT entry_type, COALESCE(SUM(amount_cents), 0)
		FROM financial_entries
		WHERE account_id = ? AND date >= ? AND date < ?
		GROUP BY entry_type`,
		accountID, first, next)
	if err != nil {
		return income, expense, fmt.Errorf("month totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entryType string
		var cents int64
		if err := rows.Scan(&entryType, &cents); err != nil {
			return income, expense, err
		}
		switch core.EntryType(entryType) {
		case core.EntryIncome:
			income.Cents = cents
		case core.EntryExpense:
			expense.Cents = cents
		}
	}
	return income, expense, rows.Err()
}

// CategoryTotal is one category's share of a month.
type CategoryTotal struct {
	Category string     `json:"category"`
	Total    core.Money `json:"total"`
}

func (r *SQLiteRepository) CategoryTotals(ctx context.Context, accountID int64, year, month int, entryType core.EntryType) ([]CategoryTotal, error) {
	first, next := monthRange(year, month)
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COALESCE(SUM(amount_cents), 0) AS total
		FROM financial_entries
		WHERE account_id = ? AND entry_type = ? AND date >= ? AND date < ?
		GROUP BY category
		ORDER BY total DESC, category`,
		accountID, string(entryType), first, next)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var t CategoryTotal
		if err := rows.Scan(&t.Category, &t.Total.Cents); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// DayTotalsRow is one day of the income/expense history.
type DayTotalsRow struct {
	Date    core.Date  `json:"date"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
}

// DailyHistory groups entries per day over the half-open [from, to)
// range.
func (r *SQLiteRepository) DailyHistory(ctx context.Context, accountID int64, from, to core.Date) ([]DayTotalsRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date,
			COALESCE(SUM(CASE WHEN entry_type = 'INCOME' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN entry_type = 'EXPENSE' THEN amount_cents ELSE 0 END), 0)
		FROM financial_entries
		WHERE account_id = ? AND date >= ? AND date < ?
		GROUP BY date
		ORDER BY date`,
		accountID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("daily history: %w", err)
	}
	defer rows.Close()

	var history []DayTotalsRow
	for rows.Next() {
		var d DayTotalsRow
		var date string
		if err := rows.Scan(&date, &d.Income.Cents, &d.Expense.Cents); err != nil {
			return nil, err
		}
		d.Date = parseStoredDate(date)
		history = append(history, d)
	}
	return history, rows.Err()
}

// MonthTotalsRow is one month of the income/expense history.
type MonthTotalsRow struct {
	Year    int        `json:"year"`
	Month   int        `json:"month"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
}

// MonthlyHistory groups entries per calendar month over the half-open
// [from, to) range.
func (r *SQLiteRepository) MonthlyHistory(ctx context.Context, accountID int64, from, to core.Date) ([]MonthTotalsRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(substr(date, 1, 4) AS INTEGER),
			CAST(substr(date, 6, 2) AS INTEGER),
			COALESCE(SUM(CASE WHEN entry_type = 'INCOME' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN entry_type = 'EXPENSE' THEN amount_cents ELSE 0 END), 0)
		FROM financial_entries
		WHERE account_id = ? AND date >= ? AND date < ?
		GROUP BY substr(date, 1, 7)
		ORDER BY substr(date, 1, 7)`,
		accountID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("monthly history: %w", err)
	}
	defer rows.Close()

	var history []MonthTotalsRow
	for rows.Next() {
		var m MonthTotalsRow
		if err := rows.Scan(&m.Year, &m.Month, &m.Income.Cents, &m.Expense.Cents); err != nil {
			return nil, err
		}
		history = append(history, m)
	}
	return history, rows.Err()
}
