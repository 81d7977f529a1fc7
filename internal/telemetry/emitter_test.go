package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/louisbranch/worldbridge/internal/storage"
)

type recordingStore struct {
	events []storage.TelemetryEvent
}

func (s *recordingStore) AppendTelemetryEvent(_ context.Context, evt storage.TelemetryEvent) error {
	s.events = append(s.events, evt)
	return nil
}

func (s *recordingStore) ListTelemetryEvents(context.Context, int) ([]storage.TelemetryEvent, error) {
	return s.events, nil
}

func TestEmitRecordsEvent(t *testing.T) {
	store := &recordingStore{}
	emitter := NewEmitter(store)
	fixed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	emitter.clock = func() time.Time { return fixed }

	if err := emitter.Emit(context.Background(), EventTransactionCompleted, SeverityInfo, "hash 0x1"); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(store.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(store.events))
	}
	evt := store.events[0]
	if evt.Name != EventTransactionCompleted {
		t.Fatalf("unexpected name %s", evt.Name)
	}
	if evt.Severity != string(SeverityInfo) {
		t.Fatalf("unexpected severity %s", evt.Severity)
	}
	if !evt.Timestamp.Equal(fixed) {
		t.Fatalf("unexpected timestamp %v", evt.Timestamp)
	}
}

func TestEmitNilSafe(t *testing.T) {
	var emitter *Emitter
	if err := emitter.Emit(context.Background(), EventQueueCleared, SeverityWarn, ""); err != nil {
		t.Fatalf("nil emitter should be a no-op, got %v", err)
	}
	if err := NewEmitter(nil).Emit(context.Background(), EventQueueCleared, SeverityWarn, ""); err != nil {
		t.Fatalf("nil store should be a no-op, got %v", err)
	}
}
