package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	"genfin/internal/core"
)

// plannerFake is an in-memory PlannerStore.
type plannerFake struct {
	expenses map[int64]core.PlannedExpense
	incomes  map[int64]core.PlannedIncome
	reserves map[int64]core.PlannedReserve
	nextID   int64
}

func newPlannerFake() *plannerFake {
	return &plannerFake{
		expenses: map[int64]core.PlannedExpense{},
		incomes:  map[int64]core.PlannedIncome{},
		reserves: map[int64]core.PlannedReserve{},
	}
}

func (f *plannerFake) CreatePlannedExpense(_ context.Context, p *core.PlannedExpense) error {
	f.nextID++
	p.ID = f.nextID
	f.expenses[p.ID] = *p
	return nil
}

func (f *plannerFake) UpdatePlannedExpense(_ context.Context, p core.PlannedExpense) error {
	if _, ok := f.expenses[p.ID]; !ok {
		return errFakeNotFound
	}
	f.expenses[p.ID] = p
	return nil
}

func (f *plannerFake) DeletePlannedExpense(_ context.Context, accountID, id int64) error {
	p, ok := f.expenses[id]
	if !ok || p.AccountID != accountID {
		return errFakeNotFound
	}
	delete(f.expenses, id)
	return nil
}

func (f *plannerFake) PlannedExpenseByID(_ context.Context, accountID, id int64) (*core.PlannedExpense, error) {
	p, ok := f.expenses[id]
	if !ok || p.AccountID != accountID {
		return nil, errFakeNotFound
	}
	return &p, nil
}

func (f *plannerFake) PlannedExpensesByAccount(_ context.Context, accountID int64) ([]core.PlannedExpense, error) {
	var out []core.PlannedExpense
	for _, p := range f.expenses {
		if p.AccountID == accountID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *plannerFake) SetPlannedExpensePaid(_ context.Context, accountID, id int64, paid bool) error {
	p, ok := f.expenses[id]
	if !ok || p.AccountID != accountID {
		return errFakeNotFound
	}
	p.IsPaid = paid
	f.expenses[id] = p
	return nil
}

func (f *plannerFake) CreatePlannedIncome(_ context.Context, p *core.PlannedIncome) error {
	f.nextID++
	p.ID = f.nextID
	f.incomes[p.ID] = *p
	return nil
}

func (f *plannerFake) UpdatePlannedIncome(_ context.Context, p core.PlannedIncome) error {
	if _, ok := f.incomes[p.ID]; !ok {
		return errFakeNotFound
	}
	f.incomes[p.ID] = p
	return nil
}

func (f *plannerFake) DeletePlannedIncome(_ context.Context, accountID, id int64) error {
	p, ok := f.incomes[id]
	if !ok || p.AccountID != accountID {
		return errFakeNotFound
	}
	delete(f.incomes, id)
	return nil
}

func (f *plannerFake) PlannedIncomesByAccount(_ context.Context, accountID int64) ([]core.PlannedIncome, error) {
	var out []core.PlannedIncome
	for _, p := range f.incomes {
		if p.AccountID == accountID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *plannerFake) CreatePlannedReserve(_ context.Context, p *core.PlannedReserve) error {
	f.nextID++
	p.ID = f.nextID
	f.reserves[p.ID] = *p
	return nil
}

func (f *plannerFake) UpdatePlannedReserve(_ context.Context, p core.PlannedReserve) error {
	if _, ok := f.reserves[p.ID]; !ok {
		return errFakeNotFound
	}
	f.reserves[p.ID] = p
	return nil
}

func (f *plannerFake) DeletePlannedReserve(_ context.Context, accountID, id int64) error {
	p, ok := f.reserves[id]
	if !ok || p.AccountID != accountID {
		return errFakeNotFound
	}
	delete(f.reserves, id)
	return nil
}

func (f *plannerFake) PlannedReservesByAccount(_ context.Context, accountID int64) ([]core.PlannedReserve, error) {
	var out []core.PlannedReserve
	for _, p := range f.reserves {
		if p.AccountID == accountID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func seedSyntheticBill(f *plannerFake, accountID int64) core.PlannedExpense {
	f.nextID++
	bill := core.PlannedExpense{
		ID:          f.nextID,
		AccountID:   accountID,
		Date:        core.NewDate(2024, 4, 10),
		Category:    "Card •1234",
		Description: "Invoice",
		Amount:      core.Money{Cents: 12345},
		IsRecurring: true,
		SourceKey:   "CC:3:2024-03",
	}
	f.expenses[bill.ID] = bill
	return bill
}

func TestSyntheticBillsAreReadOnly(t *testing.T) {
	store := newPlannerFake()
	svc := NewPlannerService(store)
	ctx := context.Background()
	bill := seedSyntheticBill(store, 9)

	edited := bill
	edited.Amount = core.Money{Cents: 1}
	if err := svc.UpdateExpense(ctx, edited); !errors.Is(err, core.ErrBillRecordReadOnly) {
		t.Errorf("UpdateExpense() error = %v, want ErrBillRecordReadOnly", err)
	}
	if err := svc.DeleteExpense(ctx, 9, bill.ID); !errors.Is(err, core.ErrBillRecordReadOnly) {
		t.Errorf("DeleteExpense() error = %v, want ErrBillRecordReadOnly", err)
	}

	// Creating a record that claims the bill namespace is also rejected.
	forged := bill
	forged.ID = 0
	forged.SourceKey = "CC:4:2024-03"
	if _, err := svc.CreateExpense(ctx, forged); !errors.Is(err, core.ErrBillRecordReadOnly) {
		t.Errorf("CreateExpense() error = %v, want ErrBillRecordReadOnly", err)
	}
}

func TestSyntheticBillPaidToggleAllowed(t *testing.T) {
	store := newPlannerFake()
	svc := NewPlannerService(store)
	ctx := context.Background()
	bill := seedSyntheticBill(store, 9)

	if err := svc.SetExpensePaid(ctx, 9, bill.ID, true); err != nil {
		t.Fatalf("SetExpensePaid: %v", err)
	}
	if got := store.expenses[bill.ID]; !got.IsPaid {
		t.Error("paid flag not stored")
	}
}

func TestManualExpenseLifecycle(t *testing.T) {
	store := newPlannerFake()
	svc := NewPlannerService(store)
	ctx := context.Background()

	created, err := svc.CreateExpense(ctx, core.PlannedExpense{
		AccountID: 9,
		Date:      core.NewDate(2024, 4, 5),
		Category:  "Rent",
		Amount:    core.Money{Cents: 150000},
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	created.Amount = core.Money{Cents: 160000}
	if err := svc.UpdateExpense(ctx, *created); err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	if err := svc.DeleteExpense(ctx, 9, created.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}

	left, err := svc.Expenses(ctx, 9)
	if err != nil {
		t.Fatalf("Expenses: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("expenses left after delete: %+v", left)
	}
}

func TestCreateExpenseValidates(t *testing.T) {
	svc := NewPlannerService(newPlannerFake())
	if _, err := svc.CreateExpense(context.Background(), core.PlannedExpense{
		AccountID: 9,
		Date:      core.NewDate(2024, 4, 5),
		Category:  "",
		Amount:    core.Money{Cents: 100},
	}); !errors.Is(err, core.ErrEmptyCategory) {
		t.Errorf("CreateExpense() error = %v, want ErrEmptyCategory", err)
	}
}

func TestIncomeAndReserveLifecycle(t *testing.T) {
	store := newPlannerFake()
	svc := NewPlannerService(store)
	ctx := context.Background()

	income, err := svc.CreateIncome(ctx, core.PlannedIncome{
		AccountID: 9, Date: core.NewDate(2024, 4, 1), Category: "Salary",
		Amount: core.Money{Cents: 500000}, IsRecurring: true,
	})
	if err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}
	reserve, err := svc.CreateReserve(ctx, core.PlannedReserve{
		AccountID: 9, Date: core.NewDate(2024, 4, 1), Category: "Emergency fund",
		Amount: core.Money{Cents: 50000},
	})
	if err != nil {
		t.Fatalf("CreateReserve: %v", err)
	}

	if err := svc.DeleteIncome(ctx, 9, income.ID); err != nil {
		t.Fatalf("DeleteIncome: %v", err)
	}
	if err := svc.DeleteReserve(ctx, 9, reserve.ID); err != nil {
		t.Fatalf("DeleteReserve: %v", err)
	}
}
