// Package billing implements the credit-card billing-cycle engine:
// resolution of a card's billing owner through the parent chain, mapping
// of purchases onto invoice periods, and synchronization of synthetic
// bill records derived from the purchase history.
package billing

import (
	"errors"
	"fmt"

	"genfin/internal/core"
)

// ResolveBillingOwner walks the parent chain of card and returns the
// terminal ancestor. The walk stops when a card has no parent, when the
// parent is missing from the lookup, or when a card would be visited
// twice. Cycles cannot be persisted through ValidateParent; the visited
// set is a guard against data that bypassed it, and on a cycle the last
// card reached before re-entering it is returned.
func ResolveBillingOwner(card core.Card, byID map[int64]core.Card) core.Card {
	visited := map[int64]bool{card.ID: true}
	current := card
	for current.ParentID != nil {
		parent, ok := byID[*current.ParentID]
		if !ok {
			return current
		}
		if visited[parent.ID] {
			return current
		}
		visited[parent.ID] = true
		current = parent
	}
	return current
}

// OwnerID returns the identity of the card's billing owner, which is the
// card's own identity when it has no resolvable parent.
func OwnerID(card core.Card, byID map[int64]core.Card) int64 {
	return ResolveBillingOwner(card, byID).ID
}

// ErrCardCycle is returned by ValidateParent when the proposed link
// would close a loop in the parent chain.
var ErrCardCycle = errors.New("card parent chain would form a cycle")

// ValidateParent checks that assigning parentID to cardID keeps the
// parent graph acyclic. It must be called before any parent mutation is
// persisted; the resolver only defends against violations, it does not
// prevent them.
func ValidateParent(cardID int64, parentID int64, byID map[int64]core.Card) error {
	if parentID == cardID {
		return ErrCardCycle
	}
	parent, ok := byID[parentID]
	if !ok {
		return fmt.Errorf("parent card %d not found", parentID)
	}
	visited := map[int64]bool{}
	current := parent
	for {
		if current.ID == cardID {
			return ErrCardCycle
		}
		if visited[current.ID] {
			// Pre-existing cycle that does not involve cardID; the new
			// link does not make it worse.
			return nil
		}
		visited[current.ID] = true
		if current.ParentID == nil {
			return nil
		}
		next, ok := byID[*current.ParentID]
		if !ok {
			return nil
		}
		current = next
	}
}
