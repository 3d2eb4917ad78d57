package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"genfin/internal/core"
)

const cardColumns = `id, account_id, nickname, last4, closing_day, due_day,
	best_purchase_day, limit_cents, miles_per_point, parent_card_id, created_at`

func scanCard(row rowScanner) (*core.Card, error) {
	var (
		c      core.Card
		parent sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.AccountID, &c.Nickname, &c.Last4, &c.ClosingDay, &c.DueDay,
		&c.BestPurchaseDay, &c.LimitAmount.Cents, &c.MilesPerPoint, &parent, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if parent.Valid {
		c.ParentID = &parent.Int64
	}
	return &c, nil
}

func (r *SQLiteRepository) CreateCard(ctx context.Context, c *core.Card) error {
	c.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO credit_cards (account_id, nickname, last4, closing_day, due_day,
			best_purchase_day, limit_cents, miles_per_point, parent_card_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.AccountID, c.Nickname, c.Last4, c.ClosingDay, c.DueDay,
		c.BestPurchaseDay, c.LimitAmount.Cents, c.MilesPerPoint, c.ParentID, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create card: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteRepository) CardByID(ctx context.Context, accountID, id int64) (*core.Card, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM credit_cards WHERE id = ? AND account_id = ?`, id, accountID)
	return scanCard(row)
}

func (r *SQLiteRepository) CardsByAccount(ctx context.Context, accountID int64) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM credit_cards WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []core.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}

func (r *SQLiteRepository) UpdateCard(ctx context.Context, c core.Card) error {
	return r.execOwned(ctx, `
		UPDATE credit_cards
		SET nickname = ?, last4 = ?, closing_day = ?, due_day = ?,
			best_purchase_day = ?, limit_cents = ?, miles_per_point = ?, parent_card_id = ?
		WHERE id = ? AND account_id = ?`,
		c.Nickname, c.Last4, c.ClosingDay, c.DueDay,
		c.BestPurchaseDay, c.LimitAmount.Cents, c.MilesPerPoint, c.ParentID,
		c.ID, c.AccountID)
}

// DeleteCard removes the card. The schema detaches children (parent set
// to NULL) and drops the card's purchases.
func (r *SQLiteRepository) DeleteCard(ctx context.Context, accountID, id int64) error {
	return r.execOwned(ctx,
		`DELETE FROM credit_cards WHERE id = ? AND account_id = ?`, id, accountID)
}

const purchaseColumns = `id, account_id, card_id, date, category, description, amount_cents, created_at`

func scanPurchase(row rowScanner) (*core.CardPurchase, error) {
	var (
		p    core.CardPurchase
		date string
	)
	err := row.Scan(&p.ID, &p.AccountID, &p.CardID, &date, &p.Category,
		&p.Description, &p.Amount.Cents, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	p.Date = parseStoredDate(date)
	return &p, nil
}

func (r *SQLiteRepository) CreatePurchase(ctx context.Context, p *core.CardPurchase) error {
	p.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO card_purchases (account_id, card_id, date, category, description, amount_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.AccountID, p.CardID, p.Date.String(), p.Category, p.Description, p.Amount.Cents, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create purchase: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteRepository) PurchaseByID(ctx context.Context, accountID, id int64) (*core.CardPurchase, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+purchaseColumns+` FROM card_purchases WHERE id = ? AND account_id = ?`, id, accountID)
	return scanPurchase(row)
}

func (r *SQLiteRepository) PurchasesByCard(ctx context.Context, accountID, cardID int64) ([]core.CardPurchase, error) {
	return r.collectPurchases(ctx, `
		SELECT `+purchaseColumns+` FROM card_purchases
		WHERE account_id = ? AND card_id = ?
		ORDER BY date, id`,
		accountID, cardID)
}

// PurchasesByCards lists the purchases of a whole card family ordered by
// date then identity, the order the billing engine aggregates in.
func (r *SQLiteRepository) PurchasesByCards(ctx context.Context, accountID int64, cardIDs []int64) ([]core.CardPurchase, error) {
	if len(cardIDs) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(cardIDs)+1)
	args = append(args, accountID)
	for _, id := range cardIDs {
		args = append(args, id)
	}
	return r.collectPurchases(ctx, `
		SELECT `+purchaseColumns+` FROM card_purchases
		WHERE account_id = ? AND card_id IN (`+placeholders(len(cardIDs))+`)
		ORDER BY date, id`,
		args...)
}

func (r *SQLiteRepository) collectPurchases(ctx context.Context, query string, args ...any) ([]core.CardPurchase, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []core.CardPurchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, *p)
	}
	return purchases, rows.Err()
}

func (r *SQLiteRepository) UpdatePurchase(ctx context.Context, p core.CardPurchase) error {
	return r.execOwned(ctx, `
		UPDATE card_purchases
		SET card_id = ?, date = ?, category = ?, description = ?, amount_cents = ?
		WHERE id = ? AND account_id = ?`,
		p.CardID, p.Date.String(), p.Category, p.Description, p.Amount.Cents, p.ID, p.AccountID)
}

func (r *SQLiteRepository) DeletePurchase(ctx context.Context, accountID, id int64) error {
	return r.execOwned(ctx,
		`DELETE FROM card_purchases WHERE id = ? AND account_id = ?`, id, accountID)
}
