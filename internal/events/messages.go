package events

import (
	"encoding/json"
	"time"
)

// Event names carried in the message envelope.
const (
	EventEntryRecorded = "entry.recorded"
	EventBillsSynced   = "bills.synced"
)

// Message is the envelope published for every domain event.
type Message struct {
	Event     string    `json:"event"`
	AccountID int64     `json:"account_id"`
	Timestamp time.Time `json:"timestamp"`

	// EntryRecorded
	EntryID     int64  `json:"entry_id,omitempty"`
	EntryType   string `json:"entry_type,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"`

	// BillsSynced
	OwnerCardID int64 `json:"owner_card_id,omitempty"`
}

// NewEntryRecorded builds the event published after a financial entry
// is stored.
func NewEntryRecorded(accountID, entryID int64, entryType string, amountCents int64) *Message {
	return &Message{
		Event:       EventEntryRecorded,
		AccountID:   accountID,
		Timestamp:   time.Now(),
		EntryID:     entryID,
		EntryType:   entryType,
		AmountCents: amountCents,
	}
}

// NewBillsSynced builds the event published after the billing engine
// finishes a synchronization run for one billing owner.
func NewBillsSynced(accountID, ownerCardID int64) *Message {
	return &Message{
		Event:       EventBillsSynced,
		AccountID:   accountID,
		Timestamp:   time.Now(),
		OwnerCardID: ownerCardID,
	}
}

// ToJSON converts the message to JSON bytes
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func FromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
