package events

import (
	"context"
	"time"
)

// Event types emitted after a ledger operation commits.
const (
	EventAccountCreated   = "account.created"
	EventAccountClosed    = "account.closed"
	EventEntryRecorded    = "ledger.entry_recorded"
	EventEntryReversed    = "ledger.entry_reversed"
	EventInterestApplied  = "ledger.interest_applied"
	EventScheduleExecuted = "schedule.executed"
)

// Event is the message published to the event stream. Amounts travel as
// fixed-point strings so consumers never see float rounding.
type Event struct {
	Type       string            `json:"type"`
	AccountNo  int64             `json:"account_no"`
	EntryID    int64             `json:"entry_id,omitempty"`
	Amount     string            `json:"amount,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// PublisherInterface defines the contract for publishing ledger events
type PublisherInterface interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
