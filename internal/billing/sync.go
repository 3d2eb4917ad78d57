package billing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"genfin/internal/core"
)

// Repository is the persistence port of the engine. All reads are scoped
// to one account; purchase listings must be ordered by date and then by
// identity so aggregation is reproducible.
type Repository interface {
	CardsByAccount(ctx context.Context, accountID int64) ([]core.Card, error)
	PurchasesByCards(ctx context.Context, accountID int64, cardIDs []int64) ([]core.CardPurchase, error)
	PlannedExpensesBySourcePrefix(ctx context.Context, accountID int64, prefix string) ([]core.PlannedExpense, error)
	CreatePlannedExpense(ctx context.Context, p *core.PlannedExpense) error
	UpdatePlannedExpense(ctx context.Context, p core.PlannedExpense) error
	DeletePlannedExpense(ctx context.Context, accountID, id int64) error
}

// Engine re-derives synthetic bill records from raw purchases. It is a
// pure recomputation: every run rebuilds the complete bill set for one
// billing owner from source data and reconciles it against what is
// stored, so running it twice with unchanged inputs is a no-op.
type Engine struct {
	repo Repository
}

func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo}
}

// SourceKey builds the deterministic identifier of one owner's bill for
// one competence period.
func SourceKey(ownerID int64, year, month int) string {
	return fmt.Sprintf("%s%d:%04d-%02d", core.BillSourcePrefix, ownerID, year, month)
}

// OwnerPrefix is the source-key prefix shared by all of an owner's
// synthetic bills.
func OwnerPrefix(ownerID int64) string {
	return fmt.Sprintf("%s%d:", core.BillSourcePrefix, ownerID)
}

type periodKey struct {
	year  int
	month int
}

// SyncBills recomputes the synthetic bills of the billing owner that
// cardID resolves to. It must be called after every purchase mutation
// and after card edits that touch the closing day, due day or parent
// link (for both the old and the new owning family when the owner
// changed). When cardID no longer exists (card deleted) it is treated as
// the owner identity itself so that orphaned bills are swept.
func (e *Engine) SyncBills(ctx context.Context, accountID, cardID int64) error {
	cards, err := e.repo.CardsByAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("load cards: %w", err)
	}
	byID := make(map[int64]core.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	ownerID := cardID
	var owner core.Card
	if trigger, ok := byID[cardID]; ok {
		owner = ResolveBillingOwner(trigger, byID)
		ownerID = owner.ID
	}

	var familyIDs []int64
	for _, c := range cards {
		if OwnerID(c, byID) == ownerID {
			familyIDs = append(familyIDs, c.ID)
		}
	}
	sort.Slice(familyIDs, func(i, j int) bool { return familyIDs[i] < familyIDs[j] })

	totals := map[periodKey]int64{}
	dueDates := map[periodKey]time.Time{}
	if len(familyIDs) > 0 {
		purchases, err := e.repo.PurchasesByCards(ctx, accountID, familyIDs)
		if err != nil {
			return fmt.Errorf("load purchases: %w", err)
		}
		for _, p := range purchases {
			// Children inherit the owner's cycle, never their own.
			period := InvoicePeriod(owner.ClosingDay, owner.DueDay, p.Date.Time)
			key := periodKey{period.CompetenceYear, period.CompetenceMonth}
			totals[key] += p.Amount.Cents
			dueDates[key] = period.DueDate
		}
	}

	existing, err := e.repo.PlannedExpensesBySourcePrefix(ctx, accountID, OwnerPrefix(ownerID))
	if err != nil {
		return fmt.Errorf("load synthetic bills: %w", err)
	}
	byKey := make(map[string]core.PlannedExpense, len(existing))
	for _, bill := range existing {
		byKey[bill.SourceKey] = bill
	}

	// Delete bills whose period no longer has any purchase.
	for _, bill := range existing {
		y, m, ok := parseSourceKeyPeriod(bill.SourceKey, ownerID)
		if ok {
			if _, active := totals[periodKey{y, m}]; active {
				continue
			}
		}
		if err := e.repo.DeletePlannedExpense(ctx, accountID, bill.ID); err != nil {
			return fmt.Errorf("delete stale bill %s: %w", bill.SourceKey, err)
		}
		slog.InfoContext(ctx, "Removed stale synthetic bill",
			"account_id", accountID, "source_key", bill.SourceKey)
	}

	keys := make([]periodKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	for _, k := range keys {
		sourceKey := SourceKey(ownerID, k.year, k.month)
		due := dueDates[k]
		bill := core.PlannedExpense{
			AccountID:   accountID,
			Date:        core.Date{Time: due},
			Category:    billCategory(owner),
			Description: billDescription(owner, k.year, k.month),
			Amount:      core.Money{Cents: totals[k]},
			IsRecurring: true,
			SourceKey:   sourceKey,
		}
		if current, ok := byKey[sourceKey]; ok {
			bill.ID = current.ID
			bill.IsPaid = current.IsPaid // the one user-owned field
			if err := e.repo.UpdatePlannedExpense(ctx, bill); err != nil {
				return fmt.Errorf("update bill %s: %w", sourceKey, err)
			}
		} else {
			if err := e.repo.CreatePlannedExpense(ctx, &bill); err != nil {
				return fmt.Errorf("create bill %s: %w", sourceKey, err)
			}
		}
	}

	slog.InfoContext(ctx, "Synchronized credit-card bills",
		"account_id", accountID,
		"owner_card_id", ownerID,
		"family_size", len(familyIDs),
		"active_periods", len(keys))
	return nil
}

func billCategory(owner core.Card) string {
	return "Card •" + owner.Last4
}

func billDescription(owner core.Card, year, month int) string {
	label := owner.Nickname
	if label == "" {
		label = "card •" + owner.Last4
	}
	return fmt.Sprintf("Invoice %s, competence %04d-%02d", label, year, month)
}

// parseSourceKeyPeriod extracts the competence period from a source key
// belonging to ownerID. Malformed keys report ok=false and are treated
// as stale.
func parseSourceKeyPeriod(key string, ownerID int64) (year, month int, ok bool) {
	var id int64
	if _, err := fmt.Sscanf(key, core.BillSourcePrefix+"%d:%d-%d", &id, &year, &month); err != nil {
		return 0, 0, false
	}
	if id != ownerID || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}
