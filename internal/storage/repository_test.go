package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"genfin/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestAccount(t *testing.T, repo *SQLiteRepository) *core.Account {
	t.Helper()
	a := &core.Account{
		PhoneNumber:  "11999990000",
		FirstName:    "Ana",
		PasswordHash: "not-a-real-hash",
		IsActive:     true,
	}
	if err := repo.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return a
}

func TestAccountRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := newTestAccount(t, repo)

	got, err := repo.AccountByPhone(ctx, "11999990000")
	if err != nil {
		t.Fatalf("AccountByPhone: %v", err)
	}
	if got.ID != a.ID || got.FirstName != "Ana" || !got.IsActive {
		t.Errorf("unexpected account: %+v", got)
	}

	got.City = "Campinas"
	got.Email = "ana@example.com"
	if err := repo.UpdateAccountProfile(ctx, *got); err != nil {
		t.Fatalf("UpdateAccountProfile: %v", err)
	}
	got, err = repo.AccountByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("AccountByID: %v", err)
	}
	if got.City != "Campinas" || got.Email != "ana@example.com" {
		t.Errorf("profile update lost: %+v", got)
	}

	if _, err := repo.AccountByPhone(ctx, "000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing account error = %v, want ErrNotFound", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := newTestAccount(t, repo)

	now := time.Now().UTC()
	live := core.Session{Token: "tok-live", AccountID: a.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	stale := core.Session{Token: "tok-stale", AccountID: a.ID, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	for _, s := range []core.Session{live, stale} {
		if err := repo.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession(%s): %v", s.Token, err)
		}
	}

	got, err := repo.SessionByToken(ctx, "tok-live")
	if err != nil {
		t.Fatalf("SessionByToken: %v", err)
	}
	if got.AccountID != a.ID {
		t.Errorf("session account = %d, want %d", got.AccountID, a.ID)
	}

	deleted, err := repo.DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if _, err := repo.SessionByToken(ctx, "tok-stale"); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale session still readable, err = %v", err)
	}

	if err := repo.DeleteSession(ctx, "tok-live"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if err := repo.DeleteSession(ctx, "tok-live"); err != nil {
		t.Errorf("second DeleteSession must be a no-op, got %v", err)
	}
}

func TestEntryTotals(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := newTestAccount(t, repo)

	entries := []core.FinancialEntry{
		{AccountID: a.ID, Type: core.EntryIncome, Date: core.NewDate(2024, 3, 5), Category: "Salary", Amount: core.Money{Cents: 500000}},
		{AccountID: a.ID, Type: core.EntryExpense, Date: core.NewDate(2024, 3, 8), Category: "Groceries", Amount: core.Money{Cents: 20050}},
		{AccountID: a.ID, Type: core.EntryExpense, Date: core.NewDate(2024, 3, 9), Category: "Groceries", Amount: core.Money{Cents: 9950}},
		{AccountID: a.ID, Type: core.EntryExpense, Date: core.NewDate(2024, 4, 1), Category: "Rent", Amount: core.Money{Cents: 150000}},
	}
	for i := range entries {
		if err := repo.CreateEntry(ctx, &entries[i]); err != nil {
			t.Fatalf("CreateEntry: %v", err)
		}
	}

	income, expense, err := repo.MonthTotals(ctx, a.ID, 2024, 3)
	if err != nil {
		t.Fatalf("MonthTotals: %v", err)
	}
	if income.Cents != 500000 || expense.Cents != 30000 {
		t.Errorf("totals = %d/%d, want 500000/30000", income.Cents, expense.Cents)
	}

	listed, err := repo.EntriesByMonth(ctx, a.ID, 2024, 3)
	if err != nil {
		t.Fatalf("EntriesByMonth: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("len(listed) = %d, want 3", len(listed))
	}

	byCategory, err := repo.CategoryTotals(ctx, a.ID, 2024, 3, core.EntryExpense)
	if err != nil {
		t.Fatalf("CategoryTotals: %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].Category != "Groceries" || byCategory[0].Total.Cents != 30000 {
		t.Errorf("unexpected category totals: %+v", byCategory)
	}

	history, err := repo.MonthlyHistory(ctx, a.ID, core.NewDate(2024, 3, 1), core.NewDate(2024, 5, 1))
	if err != nil {
		t.Fatalf("MonthlyHistory: %v", err)
	}
	if len(history) != 2 || history[1].Month != 4 || history[1].Expense.Cents != 150000 {
		t.Errorf("unexpected history: %+v", history)
	}
}

func TestPlannedExpenseSourceKeys(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := newTestAccount(t, repo)

	bill := &core.PlannedExpense{
		AccountID:   a.ID,
		Date:        core.NewDate(2024, 4, 10),
		Category:    "Card •1234",
		Description: "Invoice",
		Amount:      core.Money{Cents: 12345},
		IsRecurring: true,
		SourceKey:   "CC:3:2024-03",
	}
	manual := &core.PlannedExpense{
		AccountID: a.ID,
		Date:      core.NewDate(2024, 4, 5),
		Category:  "Rent",
		Amount:    core.Money{Cents: 150000},
	}
	for _, p := range []*core.PlannedExpense{bill, manual} {
		if err := repo.CreatePlannedExpense(ctx, p); err != nil {
			t.Fatalf("CreatePlannedExpense: %v", err)
		}
	}

	bills, err := repo.PlannedExpensesBySourcePrefix(ctx, a.ID, "CC:3:")
	if err != nil {
		t.Fatalf("PlannedExpensesBySourcePrefix: %v", err)
	}
	if len(bills) != 1 || bills[0].SourceKey != "CC:3:2024-03" {
		t.Fatalf("unexpected bills: %+v", bills)
	}

	// A second bill with the same source key must be rejected.
	dup := *bill
	dup.ID = 0
	if err := repo.CreatePlannedExpense(ctx, &dup); err == nil {
		t.Error("duplicate source key accepted")
	}

	if err := repo.SetPlannedExpensePaid(ctx, a.ID, bills[0].ID, true); err != nil {
		t.Fatalf("SetPlannedExpensePaid: %v", err)
	}
	got, err := repo.PlannedExpenseByID(ctx, a.ID, bills[0].ID)
	if err != nil {
		t.Fatalf("PlannedExpenseByID: %v", err)
	}
	if !got.IsPaid {
		t.Error("IsPaid not persisted")
	}

	all, err := repo.PlannedExpensesByAccount(ctx, a.ID)
	if err != nil {
		t.Fatalf("PlannedExpensesByAccount: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}
}

func TestDeleteCardDetachesChildrenAndDropsPurchases(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := newTestAccount(t, repo)

	owner := &core.Card{AccountID: a.ID, Nickname: "main", Last4: "1111", ClosingDay: 20, DueDay: 10, BestPurchaseDay: 1, MilesPerPoint: 1}
	if err := repo.CreateCard(ctx, owner); err != nil {
		t.Fatalf("CreateCard(owner): %v", err)
	}
	child := &core.Card{AccountID: a.ID, Nickname: "extra", Last4: "2222", ClosingDay: 20, DueDay: 10, BestPurchaseDay: 1, MilesPerPoint: 1, ParentID: &owner.ID}
	if err := repo.CreateCard(ctx, child); err != nil {
		t.Fatalf("CreateCard(child): %v", err)
	}

	purchase := &core.CardPurchase{
		AccountID: a.ID, CardID: owner.ID,
		Date: core.NewDate(2024, 3, 2), Category: "Fuel", Amount: core.Money{Cents: 10000},
	}
	if err := repo.CreatePurchase(ctx, purchase); err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	if err := repo.DeleteCard(ctx, a.ID, owner.ID); err != nil {
		t.Fatalf("DeleteCard: %v", err)
	}

	got, err := repo.CardByID(ctx, a.ID, child.ID)
	if err != nil {
		t.Fatalf("CardByID(child): %v", err)
	}
	if got.ParentID != nil {
		t.Errorf("child still points at deleted parent: %v", *got.ParentID)
	}

	orphans, err := repo.PurchasesByCards(ctx, a.ID, []int64{owner.ID})
	if err != nil {
		t.Fatalf("PurchasesByCards: %v", err)
	}
	if len(orphans) != 0 {
		t.Errorf("purchases survived card deletion: %+v", orphans)
	}
}

func TestPurchasesOrderedByDateThenID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := newTestAccount(t, repo)

	card := &core.Card{AccountID: a.ID, Last4: "3333", ClosingDay: 20, DueDay: 10, BestPurchaseDay: 1, MilesPerPoint: 1}
	if err := repo.CreateCard(ctx, card); err != nil {
		t.Fatalf("CreateCard: %v", err)
	}

	// Insert out of date order.
	dates := []core.Date{core.NewDate(2024, 3, 9), core.NewDate(2024, 3, 2), core.NewDate(2024, 3, 2)}
	for _, d := range dates {
		p := &core.CardPurchase{AccountID: a.ID, CardID: card.ID, Date: d, Category: "Misc", Amount: core.Money{Cents: 100}}
		if err := repo.CreatePurchase(ctx, p); err != nil {
			t.Fatalf("CreatePurchase: %v", err)
		}
	}

	got, err := repo.PurchasesByCards(ctx, a.ID, []int64{card.ID})
	if err != nil {
		t.Fatalf("PurchasesByCards: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if cur.Date.Before(prev.Date.Time) || (cur.Date.Equal(prev.Date.Time) && cur.ID < prev.ID) {
			t.Errorf("purchases out of order at %d: %+v then %+v", i, prev, cur)
		}
	}
}

func TestTripTollReplacement(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := newTestAccount(t, repo)

	vehicle := &core.Vehicle{AccountID: a.ID, Name: "hatch"}
	if err := repo.CreateVehicle(ctx, vehicle); err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}

	trip := &core.TripPlan{
		AccountID:  a.ID,
		VehicleID:  vehicle.ID,
		Title:      "beach weekend",
		DistanceKm: 120,
		Tolls: []core.TripToll{
			{Name: "booth A", Amount: core.Money{Cents: 1200}},
			{Name: "booth B", Amount: core.Money{Cents: 800}},
		},
	}
	if err := repo.CreateTrip(ctx, trip); err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}

	got, err := repo.TripByID(ctx, a.ID, trip.ID)
	if err != nil {
		t.Fatalf("TripByID: %v", err)
	}
	if len(got.Tolls) != 2 {
		t.Fatalf("len(tolls) = %d, want 2", len(got.Tolls))
	}

	got.Tolls = []core.TripToll{{Name: "booth C", Amount: core.Money{Cents: 500}}}
	if err := repo.UpdateTrip(ctx, *got); err != nil {
		t.Fatalf("UpdateTrip: %v", err)
	}
	got, err = repo.TripByID(ctx, a.ID, trip.ID)
	if err != nil {
		t.Fatalf("TripByID after update: %v", err)
	}
	if len(got.Tolls) != 1 || got.Tolls[0].Name != "booth C" {
		t.Errorf("tolls not replaced: %+v", got.Tolls)
	}

	if err := repo.DeleteTrip(ctx, a.ID, trip.ID); err != nil {
		t.Fatalf("DeleteTrip: %v", err)
	}
	if _, err := repo.TripByID(ctx, a.ID, trip.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted trip still readable, err = %v", err)
	}
}

func TestOwnershipScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := newTestAccount(t, repo)

	other := &core.Account{PhoneNumber: "11888880000", PasswordHash: "x", IsActive: true}
	if err := repo.CreateAccount(ctx, other); err != nil {
		t.Fatalf("CreateAccount(other): %v", err)
	}

	entry := &core.FinancialEntry{
		AccountID: a.ID, Type: core.EntryExpense,
		Date: core.NewDate(2024, 3, 1), Category: "Misc", Amount: core.Money{Cents: 100},
	}
	if err := repo.CreateEntry(ctx, entry); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	if _, err := repo.EntryByID(ctx, other.ID, entry.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-account read allowed, err = %v", err)
	}
	if err := repo.DeleteEntry(ctx, other.ID, entry.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-account delete allowed, err = %v", err)
	}
}
