// Package worker runs the background side of the tracker: it consumes
// domain events for audit logging and periodically repairs synthetic
// bills in case an in-process sync was lost.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"genfin/internal/billing"
	"genfin/internal/core"
	"genfin/internal/events"
)

// Store is the persistence slice the worker needs for repair sweeps.
type Store interface {
	AccountIDs(ctx context.Context) ([]int64, error)
	CardsByAccount(ctx context.Context, accountID int64) ([]core.Card, error)
}

type Worker struct {
	store  Store
	engine *billing.Engine
}

func New(store Store, engine *billing.Engine) *Worker {
	return &Worker{store: store, engine: engine}
}

// HandleEvent is the consumer callback. Events are advisory, so the
// worker only records them; the bill repair sweep runs on its own clock.
func (w *Worker) HandleEvent(ctx context.Context, msg *events.Message) error {
	switch msg.Event {
	case events.EventEntryRecorded:
		slog.InfoContext(ctx, "Entry recorded",
			"account_id", msg.AccountID,
			"entry_id", msg.EntryID,
			"entry_type", msg.EntryType,
			"amount_cents", msg.AmountCents)
	case events.EventBillsSynced:
		slog.InfoContext(ctx, "Bills synchronized",
			"account_id", msg.AccountID,
			"owner_card_id", msg.OwnerCardID)
	default:
		slog.WarnContext(ctx, "Unknown event", "event", msg.Event)
	}
	return nil
}

// RepairBills recomputes the bills of every billing owner of every
// account. Bill sync normally happens inline with each mutation; this
// sweep is the backup for syncs that failed and were only logged.
func (w *Worker) RepairBills(ctx context.Context) error {
	accountIDs, err := w.store.AccountIDs(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	var failures int
	for _, accountID := range accountIDs {
		cards, err := w.store.CardsByAccount(ctx, accountID)
		if err != nil {
			slog.ErrorContext(ctx, "Repair sweep cannot list cards",
				"account_id", accountID, "error", err)
			failures++
			continue
		}
		byID := make(map[int64]core.Card, len(cards))
		for _, c := range cards {
			byID[c.ID] = c
		}

		owners := make(map[int64]struct{})
		for _, c := range cards {
			owners[billing.OwnerID(c, byID)] = struct{}{}
		}
		for ownerID := range owners {
			if err := w.engine.SyncBills(ctx, accountID, ownerID); err != nil {
				slog.ErrorContext(ctx, "Repair sweep sync failed",
					"account_id", accountID, "owner_card_id", ownerID, "error", err)
				failures++
			}
		}
	}

	if failures > 0 {
		return fmt.Errorf("repair sweep finished with %d failures", failures)
	}
	return nil
}
