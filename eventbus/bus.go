package eventbus

import (
	"context"

	"github.com/quayside/commerce/envelope"
	"github.com/quayside/commerce/handler"
	"github.com/quayside/commerce/message"
)

// Enqueuer is an interface for placing events on the dispatch queue for
// asynchronous delivery.
type Enqueuer interface {
	// Enqueue adds env to the queue for delivery to the handler with the
	// given key.
	Enqueue(ctx context.Context, key string, env *envelope.Envelope) error
}

// Bus delivers published events to the handlers registered for their type.
//
// Sync handlers are invoked inline, each in its own unit-of-work; a failure
// propagates to the publisher. Async handlers receive the event via the
// dispatch queue instead.
type Bus struct {
	// Routes is the registry that maps event types to handlers.
	Routes *Registry

	// Exec sets up the unit-of-work that each sync handler runs within.
	Exec *handler.EntryPoint

	// Enqueuer is used to hand events over to async handlers. It must be
	// non-nil if any async routes are registered.
	Enqueuer Enqueuer
}

// Publish delivers the event in env to every handler registered for its type.
//
// Publishing an event with no registered handlers is a no-op.
func (b *Bus) Publish(ctx context.Context, env *envelope.Envelope) error {
	for _, rt := range b.Routes.Routes(message.TypeOf(env.Message)) {
		var err error

		switch rt.Kind {
		case Sync:
			err = b.Exec.HandleMessage(ctx, rt.Handler, env)
		case Async:
			err = b.Enqueuer.Enqueue(ctx, rt.Key, env)
		}

		if err != nil {
			return err
		}
	}

	return nil
}
