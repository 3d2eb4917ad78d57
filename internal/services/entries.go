// Package services holds the application services between the HTTP
// handlers and storage. Services validate input, enforce the rules the
// schema cannot express and decide when the billing engine must run.
package services

import (
	"context"
	"log/slog"

	"genfin/internal/core"
	"genfin/internal/events"
	"genfin/internal/storage"
)

// EntryStore is the persistence slice used by EntryService.
type EntryStore interface {
	CreateEntry(ctx context.Context, e *core.FinancialEntry) error
	EntryByID(ctx context.Context, accountID, id int64) (*core.FinancialEntry, error)
	EntriesByMonth(ctx context.Context, accountID int64, year, month int) ([]core.FinancialEntry, error)
	UpdateEntry(ctx context.Context, e core.FinancialEntry) error
	DeleteEntry(ctx context.Context, accountID, id int64) error
	MonthTotals(ctx context.Context, accountID int64, year, month int) (income, expense core.Money, err error)
	CategoryTotals(ctx context.Context, accountID int64, year, month int, entryType core.EntryType) ([]storage.CategoryTotal, error)
	MonthlyHistory(ctx context.Context, accountID int64, from, to core.Date) ([]storage.MonthTotalsRow, error)
	DailyHistory(ctx context.Context, accountID int64, from, to core.Date) ([]storage.DayTotalsRow, error)
}

type EntryService struct {
	store  EntryStore
	events *events.Publisher
}

func NewEntryService(store EntryStore, publisher *events.Publisher) *EntryService {
	return &EntryService{store: store, events: publisher}
}

// Record validates and stores one income or expense entry.
func (s *EntryService) Record(ctx context.Context, e core.FinancialEntry) (*core.FinancialEntry, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateEntry(ctx, &e); err != nil {
		return nil, err
	}

	msg := events.NewEntryRecorded(e.AccountID, e.ID, string(e.Type), e.Amount.Cents)
	if err := s.events.Publish(ctx, msg); err != nil {
		slog.WarnContext(ctx, "Entry event publish failed", "entry_id", e.ID, "error", err)
	}
	return &e, nil
}

func (s *EntryService) ByID(ctx context.Context, accountID, id int64) (*core.FinancialEntry, error) {
	return s.store.EntryByID(ctx, accountID, id)
}

func (s *EntryService) ByMonth(ctx context.Context, accountID int64, year, month int) ([]core.FinancialEntry, error) {
	return s.store.EntriesByMonth(ctx, accountID, year, month)
}

func (s *EntryService) Update(ctx context.Context, e core.FinancialEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return s.store.UpdateEntry(ctx, e)
}

func (s *EntryService) Delete(ctx context.Context, accountID, id int64) error {
	return s.store.DeleteEntry(ctx, accountID, id)
}

// MonthOverview is the dashboard payload for one month.
type MonthOverview struct {
	Year       int                     `json:"year"`
	Month      int                     `json:"month"`
	Income     core.Money              `json:"income"`
	Expense    core.Money              `json:"expense"`
	Balance    core.Money              `json:"balance"`
	ByCategory []storage.CategoryTotal `json:"by_category"`
	Entries    []core.FinancialEntry   `json:"entries"`
}

// Overview aggregates one month for the dashboard: totals, the expense
// category breakdown and the raw entries.
func (s *EntryService) Overview(ctx context.Context, accountID int64, year, month int) (*MonthOverview, error) {
	income, expense, err := s.store.MonthTotals(ctx, accountID, year, month)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.store.CategoryTotals(ctx, accountID, year, month, core.EntryExpense)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.EntriesByMonth(ctx, accountID, year, month)
	if err != nil {
		return nil, err
	}
	return &MonthOverview{
		Year:       year,
		Month:      month,
		Income:     income,
		Expense:    expense,
		Balance:    core.Money{Cents: income.Cents - expense.Cents},
		ByCategory: byCategory,
		Entries:    entries,
	}, nil
}

// History returns the last months of income versus expense, newest month
// last, for the stats page.
func (s *EntryService) History(ctx context.Context, accountID int64, months int) ([]storage.MonthTotalsRow, error) {
	if months < 1 {
		months = 1
	}
	today := core.Today()
	to := core.NewDate(today.Year(), int(today.Month())+1, 1)
	from := core.NewDate(today.Year(), int(today.Month())-months+1, 1)
	return s.store.MonthlyHistory(ctx, accountID, from, to)
}

// Daily returns one month of per-day totals for the stats page.
func (s *EntryService) Daily(ctx context.Context, accountID int64, year, month int) ([]storage.DayTotalsRow, error) {
	from := core.NewDate(year, month, 1)
	to := core.NewDate(year, month+1, 1)
	return s.store.DailyHistory(ctx, accountID, from, to)
}

// WeekTotalsRow is one ISO week of the income/expense history.
type WeekTotalsRow struct {
	Year    int        `json:"year"`
	Week    int        `json:"week"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
}

// Weekly groups the last weeks of entries by ISO week, oldest first.
func (s *EntryService) Weekly(ctx context.Context, accountID int64, weeks int) ([]WeekTotalsRow, error) {
	if weeks < 1 {
		weeks = 1
	}
	today := core.Today()
	to := core.NewDate(today.Year(), int(today.Month()), today.Day()+1)
	from := core.NewDate(today.Year(), int(today.Month()), today.Day()-7*weeks+1)
	days, err := s.store.DailyHistory(ctx, accountID, from, to)
	if err != nil {
		return nil, err
	}

	var out []WeekTotalsRow
	index := map[[2]int]int{}
	for _, day := range days {
		year, week := day.Date.ISOWeek()
		key := [2]int{year, week}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, WeekTotalsRow{Year: year, Week: week})
		}
		out[i].Income.Cents += day.Income.Cents
		out[i].Expense.Cents += day.Expense.Cents
	}
	return out, nil
}
