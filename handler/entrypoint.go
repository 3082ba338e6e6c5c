package handler

import (
	"context"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/quayside/commerce/envelope"
	"github.com/quayside/commerce/internal/mlog"
	"github.com/quayside/commerce/persistence"
)

// EntryPoint sets up a unit-of-work for each event to be handled, dispatches
// to a handler, persists the result, and publishes any events recorded by the
// handler.
type EntryPoint struct {
	// Persister is used to persist the unit-of-work.
	Persister persistence.Persister

	// Publisher is used to publish the events recorded in the unit-of-work
	// after it has been persisted successfully. If it is nil, recorded events
	// are not published.
	Publisher Publisher

	// Observers is a set of observers that is added to every unit-of-work.
	Observers []Observer

	// Logger is the target for log messages about the events that are
	// published. If it is nil, logging.DefaultLogger is used.
	Logger logging.Logger
}

// HandleMessage handles the event in env using h and persists the result of
// its unit-of-work.
//
// The events recorded by h are published only if the unit-of-work is persisted
// successfully. Each event is published exactly once, in the order it was
// recorded.
func (ep *EntryPoint) HandleMessage(
	ctx context.Context,
	h Handler,
	env *envelope.Envelope,
) (err error) {
	// Setup a new unit-of-work. We copy the observers so that we don't mess
	// with the underlying array of ep.Observers as new elements are appended
	// while handling the event.
	w := &UnitOfWork{
		observers: append([]Observer(nil), ep.Observers...),
	}

	// Ensure we always notify the observers, regardless of the result.
	defer func() {
		w.notifyObservers(err)
	}()

	if err := h.HandleMessage(ctx, w, env); err != nil {
		return err
	}

	if err := ep.Persister.Persist(ctx, w.batch); err != nil {
		return err
	}

	return ep.publish(ctx, w.result.Events)
}

// publish delivers each of the given events to the entry point's publisher.
func (ep *EntryPoint) publish(ctx context.Context, events []*envelope.Envelope) error {
	if ep.Publisher == nil {
		return nil
	}

	for _, env := range events {
		mlog.LogPublish(ep.Logger, env)

		if err := ep.Publisher.Publish(ctx, env); err != nil {
			return err
		}
	}

	return nil
}
