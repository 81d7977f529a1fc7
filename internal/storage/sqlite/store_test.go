package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/worldbridge/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "telemetry.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestAppendAndListTelemetryEvents(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	events := []storage.TelemetryEvent{
		{Name: "bridge.account.connected", Severity: "INFO", Message: "account 0x1", Timestamp: base},
		{Name: "bridge.tx.failed", Severity: "ERROR", Message: "rejected", Timestamp: base.Add(time.Second)},
	}
	for _, evt := range events {
		if err := store.AppendTelemetryEvent(ctx, evt); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}

	listed, err := store.ListTelemetryEvents(ctx, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 events, got %d", len(listed))
	}
	if listed[0].Name != "bridge.tx.failed" {
		t.Fatalf("expected newest first, got %s", listed[0].Name)
	}
	if !listed[0].Timestamp.Equal(base.Add(time.Second)) {
		t.Fatalf("unexpected timestamp %v", listed[0].Timestamp)
	}
}

func TestAppendRequiresName(t *testing.T) {
	store := openTestStore(t)

	err := store.AppendTelemetryEvent(context.Background(), storage.TelemetryEvent{Message: "no name"})
	if err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestAppendDefaultsSeverity(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.AppendTelemetryEvent(ctx, storage.TelemetryEvent{Name: "bridge.indexer.connected"}); err != nil {
		t.Fatalf("append event: %v", err)
	}
	listed, err := store.ListTelemetryEvents(ctx, 1)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if listed[0].Severity != "INFO" {
		t.Fatalf("expected INFO severity, got %s", listed[0].Severity)
	}
}
