package store

import (
	"context"

	"github.com/frahmantamala/timesheet/internal/core/events"
)

// Publish announces a committed change so that subscribers such as the persister
// can act on it. A nil publisher is a no-op.
func Publish(ctx context.Context, pub events.Publisher, change Change, reason string) error {
	if pub == nil || change.Data == nil {
		return nil
	}
	return pub.Publish(ctx, events.NewStoreChangedEvent(change.Version, change.Data, reason))
}
