package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"genfin/internal/billing"
	"genfin/internal/core"
	"genfin/internal/rates"
)

// cardFake is an in-memory CardStore.
type cardFake struct {
	cards     map[int64]core.Card
	purchases map[int64]core.CardPurchase
	planned   map[int64]core.PlannedExpense
	nextID    int64
}

func newCardFake() *cardFake {
	return &cardFake{
		cards:     map[int64]core.Card{},
		purchases: map[int64]core.CardPurchase{},
		planned:   map[int64]core.PlannedExpense{},
	}
}

var errFakeNotFound = errors.New("not found")

func (f *cardFake) CardsByAccount(_ context.Context, accountID int64) ([]core.Card, error) {
	var out []core.Card
	for _, c := range f.cards {
		if c.AccountID == accountID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *cardFake) CardByID(_ context.Context, accountID, id int64) (*core.Card, error) {
	c, ok := f.cards[id]
	if !ok || c.AccountID != accountID {
		return nil, errFakeNotFound
	}
	return &c, nil
}

func (f *cardFake) CreateCard(_ context.Context, c *core.Card) error {
	f.nextID++
	c.ID = f.nextID
	f.cards[c.ID] = *c
	return nil
}

func (f *cardFake) UpdateCard(_ context.Context, c core.Card) error {
	if _, ok := f.cards[c.ID]; !ok {
		return errFakeNotFound
	}
	f.cards[c.ID] = c
	return nil
}

func (f *cardFake) DeleteCard(_ context.Context, accountID, id int64) error {
	c, ok := f.cards[id]
	if !ok || c.AccountID != accountID {
		return errFakeNotFound
	}
	delete(f.cards, id)
	for childID, child := range f.cards {
		if child.ParentID != nil && *child.ParentID == id {
			child.ParentID = nil
			f.cards[childID] = child
		}
	}
	for purchaseID, p := range f.purchases {
		if p.CardID == id {
			delete(f.purchases, purchaseID)
		}
	}
	return nil
}

func (f *cardFake) CreatePurchase(_ context.Context, p *core.CardPurchase) error {
	f.nextID++
	p.ID = f.nextID
	f.purchases[p.ID] = *p
	return nil
}

func (f *cardFake) PurchaseByID(_ context.Context, accountID, id int64) (*core.CardPurchase, error) {
	p, ok := f.purchases[id]
	if !ok || p.AccountID != accountID {
		return nil, errFakeNotFound
	}
	return &p, nil
}

func (f *cardFake) PurchasesByCard(ctx context.Context, accountID, cardID int64) ([]core.CardPurchase, error) {
	return f.PurchasesByCards(ctx, accountID, []int64{cardID})
}

func (f *cardFake) PurchasesByCards(_ context.Context, accountID int64, cardIDs []int64) ([]core.CardPurchase, error) {
	wanted := map[int64]bool{}
	for _, id := range cardIDs {
		wanted[id] = true
	}
	var out []core.CardPurchase
	for _, p := range f.purchases {
		if p.AccountID == accountID && wanted[p.CardID] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *cardFake) UpdatePurchase(_ context.Context, p core.CardPurchase) error {
	if _, ok := f.purchases[p.ID]; !ok {
		return errFakeNotFound
	}
	f.purchases[p.ID] = p
	return nil
}

func (f *cardFake) DeletePurchase(_ context.Context, accountID, id int64) error {
	p, ok := f.purchases[id]
	if !ok || p.AccountID != accountID {
		return errFakeNotFound
	}
	delete(f.purchases, id)
	return nil
}

func (f *cardFake) PlannedExpensesBySourcePrefix(_ context.Context, accountID int64, prefix string) ([]core.PlannedExpense, error) {
	var out []core.PlannedExpense
	for _, p := range f.planned {
		if p.AccountID == accountID && strings.HasPrefix(p.SourceKey, prefix) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *cardFake) CreatePlannedExpense(_ context.Context, p *core.PlannedExpense) error {
	f.nextID++
	p.ID = f.nextID
	f.planned[p.ID] = *p
	return nil
}

func (f *cardFake) UpdatePlannedExpense(_ context.Context, p core.PlannedExpense) error {
	if _, ok := f.planned[p.ID]; !ok {
		return errFakeNotFound
	}
	f.planned[p.ID] = p
	return nil
}

func (f *cardFake) DeletePlannedExpense(_ context.Context, accountID, id int64) error {
	p, ok := f.planned[id]
	if !ok || p.AccountID != accountID {
		return errFakeNotFound
	}
	delete(f.planned, id)
	return nil
}

type fixedRate struct{ value float64 }

func (r fixedRate) Current(context.Context) rates.Rate {
	return rates.Rate{Value: r.value, Source: rates.SourceFallback}
}

const cardTestAccount = int64(9)

func newCardService(store *cardFake) *CardService {
	return NewCardService(store, billing.NewEngine(store), fixedRate{value: 5.0}, nil)
}

func mustCreateCard(t *testing.T, svc *CardService, c core.Card) *core.Card {
	t.Helper()
	created, err := svc.CreateCard(context.Background(), c)
	if err != nil {
		t.Fatalf("CreateCard: %v", err)
	}
	return created
}

func TestCreateCardAppliesDefaults(t *testing.T) {
	svc := newCardService(newCardFake())
	card := mustCreateCard(t, svc, core.Card{AccountID: cardTestAccount, Last4: "1234"})
	if card.ClosingDay != core.DefaultClosingDay || card.DueDay != core.DefaultDueDay {
		t.Errorf("defaults not applied: %+v", card)
	}
	if card.MilesPerPoint != 1 {
		t.Errorf("MilesPerPoint = %v, want 1", card.MilesPerPoint)
	}
}

func TestCreateCardRejectsUnknownParent(t *testing.T) {
	svc := newCardService(newCardFake())
	missing := int64(99)
	if _, err := svc.CreateCard(context.Background(), core.Card{
		AccountID: cardTestAccount, Last4: "1234", ParentID: &missing,
	}); err == nil {
		t.Error("unknown parent accepted")
	}
}

func TestUpdateCardRejectsCycle(t *testing.T) {
	store := newCardFake()
	svc := newCardService(store)
	ctx := context.Background()

	parent := mustCreateCard(t, svc, core.Card{AccountID: cardTestAccount, Last4: "1111"})
	child := mustCreateCard(t, svc, core.Card{AccountID: cardTestAccount, Last4: "2222", ParentID: &parent.ID})

	parent.ParentID = &child.ID
	if err := svc.UpdateCard(ctx, *parent); !errors.Is(err, billing.ErrCardCycle) {
		t.Errorf("UpdateCard() error = %v, want ErrCardCycle", err)
	}
}

func TestPurchaseMutationsKeepBillsInSync(t *testing.T) {
	store := newCardFake()
	svc := newCardService(store)
	ctx := context.Background()

	card := mustCreateCard(t, svc, core.Card{AccountID: cardTestAccount, Last4: "1234", ClosingDay: 14, DueDay: 20})

	created, err := svc.CreatePurchase(ctx, core.CardPurchase{
		AccountID: cardTestAccount, CardID: card.ID,
		Date: core.NewDate(2024, 3, 2), Category: "Groceries",
		Amount: core.Money{Cents: 10000},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	bills, _ := store.PlannedExpensesBySourcePrefix(ctx, cardTestAccount, billing.OwnerPrefix(card.ID))
	if len(bills) != 1 || bills[0].Amount.Cents != 10000 {
		t.Fatalf("bill not created after purchase: %+v", bills)
	}

	created.Amount = core.Money{Cents: 2500}
	if err := svc.UpdatePurchase(ctx, *created); err != nil {
		t.Fatalf("UpdatePurchase: %v", err)
	}
	bills, _ = store.PlannedExpensesBySourcePrefix(ctx, cardTestAccount, billing.OwnerPrefix(card.ID))
	if len(bills) != 1 || bills[0].Amount.Cents != 2500 {
		t.Fatalf("bill not updated: %+v", bills)
	}

	if err := svc.DeletePurchase(ctx, cardTestAccount, created.ID); err != nil {
		t.Fatalf("DeletePurchase: %v", err)
	}
	bills, _ = store.PlannedExpensesBySourcePrefix(ctx, cardTestAccount, billing.OwnerPrefix(card.ID))
	if len(bills) != 0 {
		t.Errorf("bill survived purchase deletion: %+v", bills)
	}
}

func TestMovingPurchaseBetweenFamiliesSyncsBoth(t *testing.T) {
	store := newCardFake()
	svc := newCardService(store)
	ctx := context.Background()

	first := mustCreateCard(t, svc, core.Card{AccountID: cardTestAccount, Last4: "1111"})
	second := mustCreateCard(t, svc, core.Card{AccountID: cardTestAccount, Last4: "2222"})

	purchase, err := svc.CreatePurchase(ctx, core.CardPurchase{
		AccountID: cardTestAccount, CardID: first.ID,
		Date: core.NewDate(2024, 3, 2), Category: "Fuel",
		Amount: core.Money{Cents: 5000},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	purchase.CardID = second.ID
	if err := svc.UpdatePurchase(ctx, *purchase); err != nil {
		t.Fatalf("UpdatePurchase: %v", err)
	}

	oldBills, _ := store.PlannedExpensesBySourcePrefix(ctx, cardTestAccount, billing.OwnerPrefix(first.ID))
	newBills, _ := store.PlannedExpensesBySourcePrefix(ctx, cardTestAccount, billing.OwnerPrefix(second.ID))
	if len(oldBills) != 0 {
		t.Errorf("old family kept a bill: %+v", oldBills)
	}
	if len(newBills) != 1 || newBills[0].Amount.Cents != 5000 {
		t.Errorf("new family missing the bill: %+v", newBills)
	}
}

func TestDeleteCardSweepsBillsAndResyncsChildren(t *testing.T) {
	store := newCardFake()
	svc := newCardService(store)
	ctx := context.Background()

	owner := mustCreateCard(t, svc, core.Card{AccountID: cardTestAccount, Last4: "1111"})
	child := mustCreateCard(t, svc, core.Card{AccountID: cardTestAccount, Last4: "2222", ParentID: &owner.ID})

	// Purchases on the child are billed on the owner.
	if _, err := svc.CreatePurchase(ctx, core.CardPurchase{
		AccountID: cardTestAccount, CardID: child.ID,
		Date: core.NewDate(2024, 3, 2), Category: "Misc",
		Amount: core.Money{Cents: 7000},
	}); err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	ownerBills, _ := store.PlannedExpensesBySourcePrefix(ctx, cardTestAccount, billing.OwnerPrefix(owner.ID))
	if len(ownerBills) != 1 {
		t.Fatalf("owner bill missing: %+v", ownerBills)
	}

	if err := svc.DeleteCard(ctx, cardTestAccount, owner.ID); err != nil {
		t.Fatalf("DeleteCard: %v", err)
	}

	ownerBills, _ = store.PlannedExpensesBySourcePrefix(ctx, cardTestAccount, billing.OwnerPrefix(owner.ID))
	if len(ownerBills) != 0 {
		t.Errorf("deleted owner's bills not swept: %+v", ownerBills)
	}

	// The detached child now bills its surviving purchases itself.
	childBills, _ := store.PlannedExpensesBySourcePrefix(ctx, cardTestAccount, billing.OwnerPrefix(child.ID))
	if len(childBills) != 1 || childBills[0].Amount.Cents != 7000 {
		t.Errorf("child bills after detach: %+v", childBills)
	}
}

func TestMonthlySummaryUsesRateSource(t *testing.T) {
	store := newCardFake()
	svc := newCardService(store)
	ctx := context.Background()

	card := mustCreateCard(t, svc, core.Card{
		AccountID: cardTestAccount, Last4: "1234",
		ClosingDay: 14, DueDay: 20,
		LimitAmount: core.Money{Cents: 400000},
	})
	if _, err := svc.CreatePurchase(ctx, core.CardPurchase{
		AccountID: cardTestAccount, CardID: card.ID,
		Date: core.NewDate(2024, 3, 2), Category: "Travel",
		Amount: core.Money{Cents: 100000},
	}); err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	summary, err := svc.MonthlySummary(ctx, cardTestAccount, 2024, 3)
	if err != nil {
		t.Fatalf("MonthlySummary: %v", err)
	}
	if summary.Rate.Value != 5.0 {
		t.Errorf("rate = %v, want 5.0", summary.Rate.Value)
	}
	if len(summary.Owners) != 1 {
		t.Fatalf("owners = %d, want 1", len(summary.Owners))
	}
	owner := summary.Owners[0]
	if owner.Spend.Cents != 100000 || owner.LimitUsagePct != 25 {
		t.Errorf("unexpected owner summary: %+v", owner)
	}
	// 1000.00 spent at rate 5.0 with 1 mile per point.
	if owner.PointsEstimate != 200 {
		t.Errorf("points = %v, want 200", owner.PointsEstimate)
	}
}
