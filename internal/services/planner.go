package services

import (
	"context"

	"genfin/internal/core"
)

// PlannerStore is the persistence slice used by PlannerService.
type PlannerStore interface {
	CreatePlannedExpense(ctx context.Context, p *core.PlannedExpense) error
	UpdatePlannedExpense(ctx context.Context, p core.PlannedExpense) error
	DeletePlannedExpense(ctx context.Context, accountID, id int64) error
	PlannedExpenseByID(ctx context.Context, accountID, id int64) (*core.PlannedExpense, error)
	PlannedExpensesByAccount(ctx context.Context, accountID int64) ([]core.PlannedExpense, error)
	SetPlannedExpensePaid(ctx context.Context, accountID, id int64, paid bool) error

	CreatePlannedIncome(ctx context.Context, p *core.PlannedIncome) error
	UpdatePlannedIncome(ctx context.Context, p core.PlannedIncome) error
	DeletePlannedIncome(ctx context.Context, accountID, id int64) error
	PlannedIncomesByAccount(ctx context.Context, accountID int64) ([]core.PlannedIncome, error)

	CreatePlannedReserve(ctx context.Context, p *core.PlannedReserve) error
	UpdatePlannedReserve(ctx context.Context, p core.PlannedReserve) error
	DeletePlannedReserve(ctx context.Context, accountID, id int64) error
	PlannedReservesByAccount(ctx context.Context, accountID int64) ([]core.PlannedReserve, error)
}

// PlannerService manages planned expenses, incomes and reserves. Synthetic
// bill records (source key "CC:...") belong to the billing engine: users
// may only toggle their paid flag.
type PlannerService struct {
	store PlannerStore
}

func NewPlannerService(store PlannerStore) *PlannerService {
	return &PlannerService{store: store}
}

func (s *PlannerService) CreateExpense(ctx context.Context, p core.PlannedExpense) (*core.PlannedExpense, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.IsSyntheticBill() {
		return nil, core.ErrBillRecordReadOnly
	}
	if err := s.store.CreatePlannedExpense(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PlannerService) UpdateExpense(ctx context.Context, p core.PlannedExpense) error {
	if err := p.Validate(); err != nil {
		return err
	}
	existing, err := s.store.PlannedExpenseByID(ctx, p.AccountID, p.ID)
	if err != nil {
		return err
	}
	if existing.IsSyntheticBill() || p.IsSyntheticBill() {
		return core.ErrBillRecordReadOnly
	}
	p.SourceKey = existing.SourceKey
	return s.store.UpdatePlannedExpense(ctx, p)
}

func (s *PlannerService) DeleteExpense(ctx context.Context, accountID, id int64) error {
	existing, err := s.store.PlannedExpenseByID(ctx, accountID, id)
	if err != nil {
		return err
	}
	if existing.IsSyntheticBill() {
		return core.ErrBillRecordReadOnly
	}
	return s.store.DeletePlannedExpense(ctx, accountID, id)
}

func (s *PlannerService) Expenses(ctx context.Context, accountID int64) ([]core.PlannedExpense, error) {
	return s.store.PlannedExpensesByAccount(ctx, accountID)
}

// SetExpensePaid flips the paid flag. This is the one mutation allowed on
// synthetic bills.
func (s *PlannerService) SetExpensePaid(ctx context.Context, accountID, id int64, paid bool) error {
	return s.store.SetPlannedExpensePaid(ctx, accountID, id, paid)
}

func (s *PlannerService) CreateIncome(ctx context.Context, p core.PlannedIncome) (*core.PlannedIncome, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreatePlannedIncome(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PlannerService) UpdateIncome(ctx context.Context, p core.PlannedIncome) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.store.UpdatePlannedIncome(ctx, p)
}

func (s *PlannerService) DeleteIncome(ctx context.Context, accountID, id int64) error {
	return s.store.DeletePlannedIncome(ctx, accountID, id)
}

func (s *PlannerService) Incomes(ctx context.Context, accountID int64) ([]core.PlannedIncome, error) {
	return s.store.PlannedIncomesByAccount(ctx, accountID)
}

func (s *PlannerService) CreateReserve(ctx context.Context, p core.PlannedReserve) (*core.PlannedReserve, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreatePlannedReserve(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PlannerService) UpdateReserve(ctx context.Context, p core.PlannedReserve) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.store.UpdatePlannedReserve(ctx, p)
}

func (s *PlannerService) DeleteReserve(ctx context.Context, accountID, id int64) error {
	return s.store.DeletePlannedReserve(ctx, accountID, id)
}

func (s *PlannerService) Reserves(ctx context.Context, accountID int64) ([]core.PlannedReserve, error) {
	return s.store.PlannedReservesByAccount(ctx, accountID)
}
