package core

import (
	"errors"
	"strings"
	"time"
)

// PlannedExpense is a planned or recurring outgoing. Records whose
// SourceKey carries the BillSourcePrefix are synthetic bills owned by the
// billing engine: only IsPaid may be changed by the user, everything else
// is regenerated on every sync.
type PlannedExpense struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"-"`
	Date        Date      `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      Money     `json:"amount"`
	IsRecurring bool      `json:"is_recurring"`
	IsPaid      bool      `json:"is_paid"`
	SourceKey   string    `json:"source_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// BillSourcePrefix marks planned expenses materialized from credit-card
// invoices. Full keys look like "CC:<owner_id>:<YYYY>-<MM>".
const BillSourcePrefix = "CC:"

// IsSyntheticBill reports whether the record is owned by the billing
// engine rather than the user.
func (p PlannedExpense) IsSyntheticBill() bool {
	return strings.HasPrefix(p.SourceKey, BillSourcePrefix)
}

var ErrBillRecordReadOnly = errors.New("synthetic bill records are managed by the billing engine")

func (p PlannedExpense) Validate() error {
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

// PlannedIncome mirrors PlannedExpense for expected incomes.
type PlannedIncome struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"-"`
	Date        Date      `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      Money     `json:"amount"`
	IsRecurring bool      `json:"is_recurring"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p PlannedIncome) Validate() error {
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

// PlannedReserve is money set aside for a goal.
type PlannedReserve struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"-"`
	Date        Date      `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      Money     `json:"amount"`
	IsRecurring bool      `json:"is_recurring"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p PlannedReserve) Validate() error {
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
