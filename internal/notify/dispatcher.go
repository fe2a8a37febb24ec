package notify

import (
	"context"
	"errors"

	"github.com/lampoon-ads/backend/internal/workflow"
)

// Dispatcher hands the workflow's notifications to delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, ns []workflow.Notification) error
}

// Sender sends one notification.
type Sender interface {
	Send(ctx context.Context, n workflow.Notification) error
}

// SyncDispatcher sends on the caller's goroutine, one attempt each.
type SyncDispatcher struct {
	sender Sender
}

func NewSyncDispatcher(sender Sender) *SyncDispatcher {
	return &SyncDispatcher{sender: sender}
}

func (d *SyncDispatcher) Dispatch(ctx context.Context, ns []workflow.Notification) error {
	var errs []error
	for _, n := range ns {
		if err := d.sender.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
