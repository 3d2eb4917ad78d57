package storage

import (
	"context"
	"fmt"
	"time"

	"genfin/internal/core"
)

const accountColumns = `id, phone_number, email, first_name, last_name,
	address_line, city, state, zip_code, country, password_hash, is_active, created_at`

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a *core.Account) error {
	a.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (phone_number, email, first_name, last_name,
			address_line, city, state, zip_code, country, password_hash, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.PhoneNumber, a.Email, a.FirstName, a.LastName,
		a.AddressLine, a.City, a.State, a.ZipCode, a.Country,
		a.PasswordHash, a.IsActive, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	a.ID, err = res.LastInsertId()
	return err
}

func scanAccount(row rowScanner) (*core.Account, error) {
	var a core.Account
	err := row.Scan(&a.ID, &a.PhoneNumber, &a.Email, &a.FirstName, &a.LastName,
		&a.AddressLine, &a.City, &a.State, &a.ZipCode, &a.Country,
		&a.PasswordHash, &a.IsActive, &a.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// AccountIDs lists every active account, used by the repair worker to
// sweep bills account by account.
func (r *SQLiteRepository) AccountIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM accounts WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list account ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) AccountByPhone(ctx context.Context, phone string) (*core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE phone_number = ?`, phone)
	return scanAccount(row)
}

func (r *SQLiteRepository) AccountByID(ctx context.Context, id int64) (*core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

// UpdateAccountProfile rewrites the editable profile fields. Phone number
// and password are changed through dedicated operations.
func (r *SQLiteRepository) UpdateAccountProfile(ctx context.Context, a core.Account) error {
	return r.execOwned(ctx, `
		UPDATE accounts
		SET email = ?, first_name = ?, last_name = ?,
			address_line = ?, city = ?, state = ?, zip_code = ?, country = ?
		WHERE id = ?`,
		a.Email, a.FirstName, a.LastName,
		a.AddressLine, a.City, a.State, a.ZipCode, a.Country,
		a.ID)
}

func (r *SQLiteRepository) UpdatePassword(ctx context.Context, accountID int64, passwordHash string) error {
	return r.execOwned(ctx,
		`UPDATE accounts SET password_hash = ? WHERE id = ?`, passwordHash, accountID)
}

func (r *SQLiteRepository) CreateSession(ctx context.Context, s core.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (token, account_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)`,
		s.Token, s.AccountID, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SessionByToken(ctx context.Context, token string) (*core.Session, error) {
	var s core.Session
	err := r.db.QueryRowContext(ctx, `
		SELECT token, account_id, created_at, expires_at
		FROM sessions WHERE token = ?`, token).
		Scan(&s.Token, &s.AccountID, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// DeleteSession is idempotent: logging out twice is not an error.
func (r *SQLiteRepository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

func (r *SQLiteRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
