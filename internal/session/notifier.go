// internal/session/notifier.go
package session

import (
	"context"
	"errors"

	"github.com/jason-s-yu/park/internal/models"
)

// Notifier receives room events after the operation that produced them has committed.
type Notifier interface {
	Publish(ctx context.Context, ev models.RoomEvent) error
}

// Notifiers fans an event out to every notifier and joins their errors.
type Notifiers []Notifier

func (ns Notifiers) Publish(ctx context.Context, ev models.RoomEvent) error {
	var errs []error
	for _, n := range ns {
		if err := n.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, models.RoomEvent) error { return nil }
