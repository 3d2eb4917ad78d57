package services

import (
	"context"
	"log/slog"

	"genfin/internal/billing"
	"genfin/internal/core"
	"genfin/internal/events"
	"genfin/internal/rates"
)

// CardStore is the persistence slice used by CardService. It is a
// superset of the billing engine's repository port.
type CardStore interface {
	billing.Repository
	CardByID(ctx context.Context, accountID, id int64) (*core.Card, error)
	CreateCard(ctx context.Context, c *core.Card) error
	UpdateCard(ctx context.Context, c core.Card) error
	DeleteCard(ctx context.Context, accountID, id int64) error
	CreatePurchase(ctx context.Context, p *core.CardPurchase) error
	PurchaseByID(ctx context.Context, accountID, id int64) (*core.CardPurchase, error)
	PurchasesByCard(ctx context.Context, accountID, cardID int64) ([]core.CardPurchase, error)
	UpdatePurchase(ctx context.Context, p core.CardPurchase) error
	DeletePurchase(ctx context.Context, accountID, id int64) error
}

// RateSource provides the exchange rate used for point estimates.
type RateSource interface {
	Current(ctx context.Context) rates.Rate
}

// CardService manages cards and purchases and keeps the synthetic bills
// synchronized: every mutation that can move money between invoices
// triggers a recomputation for each affected billing family before the
// call returns.
type CardService struct {
	store  CardStore
	engine *billing.Engine
	rates  RateSource
	events *events.Publisher
}

func NewCardService(store CardStore, engine *billing.Engine, rateSource RateSource, publisher *events.Publisher) *CardService {
	return &CardService{store: store, engine: engine, rates: rateSource, events: publisher}
}

func (s *CardService) Cards(ctx context.Context, accountID int64) ([]core.Card, error) {
	return s.store.CardsByAccount(ctx, accountID)
}

func (s *CardService) Card(ctx context.Context, accountID, id int64) (*core.Card, error) {
	return s.store.CardByID(ctx, accountID, id)
}

// CreateCard stores a new card. Missing cycle days fall back to the
// schema defaults; a parent link is validated against the existing graph.
func (s *CardService) CreateCard(ctx context.Context, c core.Card) (*core.Card, error) {
	applyCardDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.ParentID != nil {
		byID, err := s.cardIndex(ctx, c.AccountID)
		if err != nil {
			return nil, err
		}
		// A new card cannot be on anyone's parent chain yet, so only the
		// parent's existence matters; 0 is never a real card identity.
		if err := billing.ValidateParent(0, *c.ParentID, byID); err != nil {
			return nil, err
		}
	}
	if err := s.store.CreateCard(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCard persists the edit and resynchronizes every family whose
// bills the edit can change: the family that owned the card before and
// the one owning it after.
func (s *CardService) UpdateCard(ctx context.Context, c core.Card) error {
	applyCardDefaults(&c)
	if err := c.Validate(); err != nil {
		return err
	}
	before, err := s.store.CardByID(ctx, c.AccountID, c.ID)
	if err != nil {
		return err
	}
	byID, err := s.cardIndex(ctx, c.AccountID)
	if err != nil {
		return err
	}
	if c.ParentID != nil {
		if err := billing.ValidateParent(c.ID, *c.ParentID, byID); err != nil {
			return err
		}
	}

	oldOwnerID := billing.OwnerID(*before, byID)
	if err := s.store.UpdateCard(ctx, c); err != nil {
		return err
	}

	s.sync(ctx, c.AccountID, oldOwnerID)
	s.sync(ctx, c.AccountID, c.ID)
	return nil
}

// DeleteCard removes the card and rebuilds the bills of everyone the
// deletion touches: the old owner, the deleted card itself (sweeping
// orphaned bills) and each former family member that survives.
func (s *CardService) DeleteCard(ctx context.Context, accountID, id int64) error {
	before, err := s.store.CardByID(ctx, accountID, id)
	if err != nil {
		return err
	}
	byID, err := s.cardIndex(ctx, accountID)
	if err != nil {
		return err
	}

	oldOwnerID := billing.OwnerID(*before, byID)
	var family []int64
	for _, card := range byID {
		if billing.OwnerID(card, byID) == oldOwnerID {
			family = append(family, card.ID)
		}
	}

	if err := s.store.DeleteCard(ctx, accountID, id); err != nil {
		return err
	}

	s.sync(ctx, accountID, id)
	if oldOwnerID != id {
		s.sync(ctx, accountID, oldOwnerID)
	}
	for _, memberID := range family {
		if memberID != id && memberID != oldOwnerID {
			s.sync(ctx, accountID, memberID)
		}
	}
	return nil
}

func (s *CardService) Purchases(ctx context.Context, accountID, cardID int64) ([]core.CardPurchase, error) {
	return s.store.PurchasesByCard(ctx, accountID, cardID)
}

func (s *CardService) CreatePurchase(ctx context.Context, p core.CardPurchase) (*core.CardPurchase, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.CardByID(ctx, p.AccountID, p.CardID); err != nil {
		return nil, err
	}
	if err := s.store.CreatePurchase(ctx, &p); err != nil {
		return nil, err
	}
	s.sync(ctx, p.AccountID, p.CardID)
	return &p, nil
}

// UpdatePurchase persists the edit; when the purchase moved between
// cards both families are resynchronized.
func (s *CardService) UpdatePurchase(ctx context.Context, p core.CardPurchase) error {
	if err := p.Validate(); err != nil {
		return err
	}
	before, err := s.store.PurchaseByID(ctx, p.AccountID, p.ID)
	if err != nil {
		return err
	}
	if p.CardID != before.CardID {
		if _, err := s.store.CardByID(ctx, p.AccountID, p.CardID); err != nil {
			return err
		}
	}
	if err := s.store.UpdatePurchase(ctx, p); err != nil {
		return err
	}
	s.sync(ctx, p.AccountID, before.CardID)
	if p.CardID != before.CardID {
		s.sync(ctx, p.AccountID, p.CardID)
	}
	return nil
}

func (s *CardService) DeletePurchase(ctx context.Context, accountID, id int64) error {
	before, err := s.store.PurchaseByID(ctx, accountID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeletePurchase(ctx, accountID, id); err != nil {
		return err
	}
	s.sync(ctx, accountID, before.CardID)
	return nil
}

// Resync forces a full recomputation for the family of one card, an
// escape hatch exposed to the user.
func (s *CardService) Resync(ctx context.Context, accountID, cardID int64) error {
	return s.engine.SyncBills(ctx, accountID, cardID)
}

// Summary is the monthly card report with the rate it was computed at.
type Summary struct {
	Year   int                    `json:"year"`
	Month  int                    `json:"month"`
	Rate   rates.Rate             `json:"rate"`
	Owners []billing.OwnerSummary `json:"owners"`
}

func (s *CardService) MonthlySummary(ctx context.Context, accountID int64, year, month int) (*Summary, error) {
	rate := s.rates.Current(ctx)
	owners, err := s.engine.MonthlySummary(ctx, accountID, year, month, rate.Value)
	if err != nil {
		return nil, err
	}
	return &Summary{Year: year, Month: month, Rate: rate, Owners: owners}, nil
}

// sync recomputes one family's bills. Sync failures are logged, not
// returned: the primary mutation already committed and the next
// successful sync repairs the bills.
func (s *CardService) sync(ctx context.Context, accountID, cardID int64) {
	if err := s.engine.SyncBills(ctx, accountID, cardID); err != nil {
		slog.ErrorContext(ctx, "Bill synchronization failed",
			"account_id", accountID, "card_id", cardID, "error", err)
		return
	}
	msg := events.NewBillsSynced(accountID, cardID)
	if err := s.events.Publish(ctx, msg); err != nil {
		slog.WarnContext(ctx, "Bill sync event publish failed",
			"account_id", accountID, "card_id", cardID, "error", err)
	}
}

func (s *CardService) cardIndex(ctx context.Context, accountID int64) (map[int64]core.Card, error) {
	cards, err := s.store.CardsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]core.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}
	return byID, nil
}

func applyCardDefaults(c *core.Card) {
	if c.ClosingDay == 0 {
		c.ClosingDay = core.DefaultClosingDay
	}
	if c.DueDay == 0 {
		c.DueDay = core.DefaultDueDay
	}
	if c.BestPurchaseDay == 0 {
		c.BestPurchaseDay = core.DefaultBestPurchaseDay
	}
	if c.MilesPerPoint == 0 {
		c.MilesPerPoint = 1
	}
}
