// Package telemetry records operational bridge events.
package telemetry

import (
	"context"
	"time"

	"github.com/louisbranch/worldbridge/internal/storage"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Event names emitted by the bridge.
const (
	EventAccountConnected     = "bridge.account.connected"
	EventIndexerConnected     = "bridge.indexer.connected"
	EventTransactionCompleted = "bridge.tx.completed"
	EventTransactionFailed    = "bridge.tx.failed"
	EventSubscriptionReplaced = "bridge.subscription.replaced"
	EventQueueCleared         = "bridge.queue.cleared"
)

// Emitter records operational telemetry events.
type Emitter struct {
	store storage.TelemetryStore
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a telemetry event. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, name string, severity Severity, message string) error {
	if e == nil || e.store == nil {
		return nil
	}
	now := time.Now
	if e.clock != nil {
		now = e.clock
	}
	return e.store.AppendTelemetryEvent(ctx, storage.TelemetryEvent{
		Name:      name,
		Severity:  string(severity),
		Message:   message,
		Timestamp: now().UTC(),
	})
}
