package billing

import (
	"context"
	"fmt"
	"sort"

	"genfin/internal/core"
)

// OwnerSummary aggregates one billing family's activity for a month.
type OwnerSummary struct {
	Owner          core.Card  `json:"owner"`
	FamilySize     int        `json:"family_size"`
	Spend          core.Money `json:"spend"`
	LimitUsagePct  float64    `json:"limit_usage_percent"`
	PointsEstimate float64    `json:"points_estimate"`
}

// MonthlySummary reports, for every billing owner of the account, the
// spend whose competence period falls in the given month, the share of
// the owner's limit it consumes, and an estimated loyalty-point total.
// rate is the externally supplied exchange rate (account currency per
// unit of the points currency); the caller guarantees a usable value,
// falling back to a constant when the rate source is unreachable.
// The summary performs no writes.
func (e *Engine) MonthlySummary(ctx context.Context, accountID int64, year, month int, rate float64) ([]OwnerSummary, error) {
	cards, err := e.repo.CardsByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}
	byID := make(map[int64]core.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	families := map[int64][]int64{}
	for _, c := range cards {
		ownerID := OwnerID(c, byID)
		families[ownerID] = append(families[ownerID], c.ID)
	}

	ownerIDs := make([]int64, 0, len(families))
	for id := range families {
		ownerIDs = append(ownerIDs, id)
	}
	sort.Slice(ownerIDs, func(i, j int) bool { return ownerIDs[i] < ownerIDs[j] })

	summaries := make([]OwnerSummary, 0, len(ownerIDs))
	for _, ownerID := range ownerIDs {
		owner := byID[ownerID]
		memberIDs := families[ownerID]
		sort.Slice(memberIDs, func(i, j int) bool { return memberIDs[i] < memberIDs[j] })

		purchases, err := e.repo.PurchasesByCards(ctx, accountID, memberIDs)
		if err != nil {
			return nil, fmt.Errorf("load purchases for owner %d: %w", ownerID, err)
		}
		var spend int64
		for _, p := range purchases {
			period := InvoicePeriod(owner.ClosingDay, owner.DueDay, p.Date.Time)
			if period.CompetenceYear == year && period.CompetenceMonth == month {
				spend += p.Amount.Cents
			}
		}

		summary := OwnerSummary{
			Owner:      owner,
			FamilySize: len(memberIDs),
			Spend:      core.Money{Cents: spend},
		}
		if owner.LimitAmount.Cents > 0 {
			summary.LimitUsagePct = float64(spend) / float64(owner.LimitAmount.Cents) * 100
		}
		if rate > 0 {
			summary.PointsEstimate = core.Money{Cents: spend}.Reais() / rate * owner.MilesPerPoint
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
