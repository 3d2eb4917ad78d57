package core

import (
	"errors"
	"strings"
	"time"
)

// Card is a credit card. A card may point at a parent card: purchases on
// the whole family are billed on the invoice of the terminal ancestor
// (the billing owner), which also lends the family its closing day, due
// day and limit. The parent chain is kept acyclic at edit time.
type Card struct {
	ID              int64     `json:"id"`
	AccountID       int64     `json:"-"`
	Nickname        string    `json:"nickname"`
	Last4           string    `json:"last4"`
	ClosingDay      int       `json:"closing_day"`
	DueDay          int       `json:"due_day"`
	BestPurchaseDay int       `json:"best_purchase_day"`
	LimitAmount     Money     `json:"limit_amount"`
	MilesPerPoint   float64   `json:"miles_per_point"`
	ParentID        *int64    `json:"parent_card_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Column defaults of the original schema, applied when a stored day is
// out of the 1..31 range.
const (
	DefaultClosingDay      = 20
	DefaultDueDay          = 10
	DefaultBestPurchaseDay = 1
)

var (
	ErrInvalidLast4 = errors.New("last4 must be exactly four digits")
	ErrInvalidDay   = errors.New("day must be between 1 and 31")
)

func (c Card) Validate() error {
	last4 := strings.TrimSpace(c.Last4)
	if len(last4) != 4 {
		return ErrInvalidLast4
	}
	for _, r := range last4 {
		if r < '0' || r > '9' {
			return ErrInvalidLast4
		}
	}
	for _, day := range []int{c.ClosingDay, c.DueDay, c.BestPurchaseDay} {
		if day < 1 || day > 31 {
			return ErrInvalidDay
		}
	}
	if c.LimitAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// CardPurchase is one expense charged on a card.
type CardPurchase struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"-"`
	CardID      int64     `json:"card_id"`
	Date        Date      `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      Money     `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p CardPurchase) Validate() error {
	if err := p.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(p.Category) == "" {
		return ErrEmptyCategory
	}
	if p.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
