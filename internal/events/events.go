package events

import (
	"context"
	"time"
)

// StreamContracts carries lifecycle events for the staff feed.
const StreamContracts = "events:contracts"

// Event types
const (
	EventAdvertiserSaved   = "advertiser_saved"
	EventAdvertiserDeleted = "advertiser_deleted"
	EventAdvertSaved       = "advert_saved"
	EventAdvertDeleted     = "advert_deleted"
	EventIssueSaved        = "issue_saved"
	EventIssueDeleted      = "issue_deleted"
	EventCorrespondence    = "correspondence_logged"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
	At      time.Time      `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
