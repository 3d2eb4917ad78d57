package http

import (
	"fmt"
	"net/http"

	"genfin/internal/core"
)

func summaryKey(accountID int64, year, month int) string {
	return fmt.Sprintf("cardsummary:%d:%04d-%02d", accountID, year, month)
}

// invalidateSummaries drops all cached card summaries. Bill mutations can
// shift amounts across arbitrary invoice months, so a targeted delete is
// not possible.
func (s *Server) invalidateSummaries() {
	s.summaryCache.Clear()
}

func (s *Server) handleCardList(w http.ResponseWriter, r *http.Request) {
	cards, err := s.cards.Cards(r.Context(), accountFrom(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cards)
}

func (s *Server) handleCardGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	card, err := s.cards.Card(r.Context(), accountFrom(r).ID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, card)
}

func (s *Server) handleCardCreate(w http.ResponseWriter, r *http.Request) {
	var card core.Card
	if err := decodeJSON(r, &card); err != nil {
		respondError(w, r, err)
		return
	}
	card.AccountID = accountFrom(r).ID
	created, err := s.cards.CreateCard(r.Context(), card)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries()
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleCardUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var card core.Card
	if err := decodeJSON(r, &card); err != nil {
		respondError(w, r, err)
		return
	}
	card.ID = id
	card.AccountID = accountFrom(r).ID
	if err := s.cards.UpdateCard(r.Context(), card); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries()
	respondJSON(w, http.StatusOK, card)
}

func (s *Server) handleCardDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.cards.DeleteCard(r.Context(), accountFrom(r).ID, id); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries()
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handlePurchaseList(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	purchases, err := s.cards.Purchases(r.Context(), accountFrom(r).ID, cardID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, purchases)
}

func (s *Server) handlePurchaseCreate(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var purchase core.CardPurchase
	if err := decodeJSON(r, &purchase); err != nil {
		respondError(w, r, err)
		return
	}
	purchase.CardID = cardID
	purchase.AccountID = accountFrom(r).ID
	created, err := s.cards.CreatePurchase(r.Context(), purchase)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries()
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePurchaseUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var purchase core.CardPurchase
	if err := decodeJSON(r, &purchase); err != nil {
		respondError(w, r, err)
		return
	}
	purchase.ID = id
	purchase.AccountID = accountFrom(r).ID
	if err := s.cards.UpdatePurchase(r.Context(), purchase); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries()
	respondJSON(w, http.StatusOK, purchase)
}

func (s *Server) handlePurchaseDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.cards.DeletePurchase(r.Context(), accountFrom(r).ID, id); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries()
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleCardSync(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.cards.Resync(r.Context(), accountFrom(r).ID, cardID); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries()
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleCardSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthParams(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	accountID := accountFrom(r).ID

	key := summaryKey(accountID, year, month)
	if cached, ok := s.summaryCache.Get(key); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}
	summary, err := s.cards.MonthlySummary(r.Context(), accountID, year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.summaryCache.Set(key, summary)
	respondJSON(w, http.StatusOK, summary)
}
