package fixtures

import (
	"context"

	"github.com/quayside/commerce/envelope"
	"github.com/quayside/commerce/handler"
	"github.com/quayside/commerce/message"
	"github.com/quayside/commerce/process"
)

// HandlerStub is a test implementation of the handler.Handler interface.
type HandlerStub struct {
	handler.Handler

	HandleMessageFunc func(context.Context, *handler.UnitOfWork, *envelope.Envelope) error
}

// HandleMessage handles the event in env.
func (h *HandlerStub) HandleMessage(
	ctx context.Context,
	w *handler.UnitOfWork,
	env *envelope.Envelope,
) error {
	if h.HandleMessageFunc != nil {
		return h.HandleMessageFunc(ctx, w, env)
	}

	if h.Handler != nil {
		return h.Handler.HandleMessage(ctx, w, env)
	}

	return nil
}

// ManagerStub is a test implementation of the process.Manager interface.
type ManagerStub struct {
	process.Manager

	NewFunc                  func() process.Root
	RouteEventToInstanceFunc func(context.Context, message.Event) (process.Route, bool, error)
	HandleEventFunc          func(context.Context, process.Root, process.Scope, message.Event) error
}

// New returns a new process root in its initial state.
func (m *ManagerStub) New() process.Root {
	if m.NewFunc != nil {
		return m.NewFunc()
	}

	if m.Manager != nil {
		return m.Manager.New()
	}

	return &ProcessRoot{}
}

// RouteEventToInstance returns the instance that ev is routed to.
func (m *ManagerStub) RouteEventToInstance(
	ctx context.Context,
	ev message.Event,
) (process.Route, bool, error) {
	if m.RouteEventToInstanceFunc != nil {
		return m.RouteEventToInstanceFunc(ctx, ev)
	}

	if m.Manager != nil {
		return m.Manager.RouteEventToInstance(ctx, ev)
	}

	return process.Route{}, false, nil
}

// HandleEvent applies ev to the process root r.
func (m *ManagerStub) HandleEvent(
	ctx context.Context,
	r process.Root,
	s process.Scope,
	ev message.Event,
) error {
	if m.HandleEventFunc != nil {
		return m.HandleEventFunc(ctx, r, s, ev)
	}

	if m.Manager != nil {
		return m.Manager.HandleEvent(ctx, r, s, ev)
	}

	return nil
}
