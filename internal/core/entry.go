package core

import (
	"errors"
	"strings"
	"time"
)

// EntryType discriminates income from expense entries.
type EntryType string

const (
	EntryIncome  EntryType = "INCOME"
	EntryExpense EntryType = "EXPENSE"
)

// FinancialEntry is a single recorded income or expense.
type FinancialEntry struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"-"`
	Type      EntryType `json:"entry_type"`
	Date      Date      `json:"date"`
	Category  string    `json:"category"`
	Amount    Money     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidEntryType = errors.New("invalid entry type")
)

func (e FinancialEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if e.Type != EntryIncome && e.Type != EntryExpense {
		return ErrInvalidEntryType
	}
	if e.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
