// Package storage defines persistence contracts for bridge telemetry.
package storage

import (
	"context"
	"time"
)

// TelemetryEvent is one recorded operational event.
type TelemetryEvent struct {
	Name      string
	Severity  string
	Message   string
	Timestamp time.Time
}

// TelemetryStore persists operational telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
	ListTelemetryEvents(ctx context.Context, limit int) ([]TelemetryEvent, error)
}
