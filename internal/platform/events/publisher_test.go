package events

import (
	"testing"
)

func TestPublish_NilReceiverIsNoop(t *testing.T) {
	var p *Publisher
	p.Publish(SubjectEntryCreated, "entry_created", "user-1", nil)
}

func TestPublish_NoJetStreamIsNoop(t *testing.T) {
	p := New(nil, nil)
	p.Publish(SubjectEntryDeleted, "entry_deleted", "user-1", map[string]any{"entry_id": "e1"})
}

func TestNewEvent_FillsEnvelope(t *testing.T) {
	ev := newEvent("entry_updated", "user-1", map[string]any{"status": "WATCHING"})
	if ev.EventID == "" {
		t.Fatal("expected event id")
	}
	if ev.OccurredAt.IsZero() || ev.OccurredAt.Location().String() != "UTC" {
		t.Fatalf("expected UTC timestamp, got %v", ev.OccurredAt)
	}
	if ev.Properties["status"] != "WATCHING" {
		t.Fatalf("unexpected properties: %v", ev.Properties)
	}
}
