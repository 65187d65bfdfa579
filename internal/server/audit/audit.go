// Package audit records security-relevant account events outside the
// credential store.
package audit

import (
	"context"
	"time"
)

const EventAccountLocked = "account_locked"

// Event describes one lockout transition.
type Event struct {
	Type           string     `json:"type"`
	AccountID      string     `json:"account_id"`
	FailedAttempts int        `json:"failed_attempts"`
	WindowStart    *time.Time `json:"window_start,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// Sink receives events.
type Sink interface {
	Record(ctx context.Context, e Event) error
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Record(context.Context, Event) error { return nil }
