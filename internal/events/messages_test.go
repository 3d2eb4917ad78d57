package events

import (
	"context"
	"testing"
	"time"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := NewBillsSynced(7, 3)
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.Event != EventBillsSynced || got.AccountID != 7 || got.OwnerCardID != 3 {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if time.Since(got.Timestamp) > time.Minute {
		t.Errorf("timestamp not set: %v", got.Timestamp)
	}
}

func TestNewEntryRecorded(t *testing.T) {
	msg := NewEntryRecorded(1, 42, "EXPENSE", 1999)
	if msg.Event != EventEntryRecorded {
		t.Errorf("event = %q, want %q", msg.Event, EventEntryRecorded)
	}
	if msg.EntryID != 42 || msg.AmountCents != 1999 || msg.EntryType != "EXPENSE" {
		t.Errorf("unexpected fields: %+v", msg)
	}
}

func TestFromJSONInvalid(t *testing.T) {
	if _, err := FromJSON([]byte("{broken")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestNilPublisherIsNoOp(t *testing.T) {
	var p *Publisher
	if err := p.Publish(context.Background(), NewBillsSynced(1, 1)); err != nil {
		t.Errorf("nil publisher must be a no-op, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("nil publisher Close must be a no-op, got %v", err)
	}
}
