// Package handler contains the transactional shell shared by every event
// handler in the commerce backend.
package handler

import (
	"context"

	"github.com/quayside/commerce/envelope"
)

// Handler handles the event in the given envelope.
type Handler interface {
	// HandleMessage handles the event in env.
	//
	// Persistence operations and follow-on events are staged in w; they take
	// effect only if the unit-of-work is persisted successfully.
	HandleMessage(ctx context.Context, w *UnitOfWork, env *envelope.Envelope) error
}

// HandlerFunc is an adaptor that allows ordinary functions to be used as
// handlers.
type HandlerFunc func(context.Context, *UnitOfWork, *envelope.Envelope) error

// HandleMessage handles the event in env.
func (f HandlerFunc) HandleMessage(ctx context.Context, w *UnitOfWork, env *envelope.Envelope) error {
	return f(ctx, w, env)
}

// Publisher is an interface for delivering events to their registered
// handlers.
type Publisher interface {
	// Publish delivers the event in env to every handler registered for its
	// type.
	Publish(ctx context.Context, env *envelope.Envelope) error
}
