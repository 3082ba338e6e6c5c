// Package eventbus provides the in-process event bus used to propagate events
// between the commerce modules.
package eventbus

import (
	"fmt"

	"github.com/quayside/commerce/handler"
	"github.com/quayside/commerce/message"
)

// Kind is the delivery mode of a route.
type Kind int

const (
	// Sync routes deliver the event to the handler inline, as part of
	// publication.
	Sync Kind = iota

	// Async routes deliver the event to the handler via a queue, on a worker
	// separate from the publisher.
	Async
)

// Route associates an event type with a handler.
type Route struct {
	// Key uniquely identifies the handler within the registry.
	Key string

	// Kind is the delivery mode used for this route.
	Kind Kind

	// Handler is the handler that the event is delivered to.
	Handler handler.Handler
}

// Registry maps event types to the handlers that receive them.
//
// Handlers are invoked in the order they were registered for any given event
// type. The registry is not safe for concurrent use with registration; all
// routes are expected to be registered before the bus is used.
type Registry struct {
	routes map[message.Type][]Route
	byKey  map[string]Route
}

// RegisterSync registers h to receive events of type t inline, as part of
// publication.
//
// It panics if key is empty, if h is nil, or if key is already registered
// for t.
func (r *Registry) RegisterSync(t message.Type, key string, h handler.Handler) {
	r.register(t, Route{key, Sync, h})
}

// RegisterAsync registers h to receive events of type t via the dispatch
// queue.
//
// It panics if key is empty, if h is nil, or if key is already registered
// for t.
func (r *Registry) RegisterAsync(t message.Type, key string, h handler.Handler) {
	r.register(t, Route{key, Async, h})
}

// Routes returns the routes registered for events of type t, in registration
// order.
func (r *Registry) Routes(t message.Type) []Route {
	return r.routes[t]
}

// AsyncRoute returns the async route with the given handler key.
func (r *Registry) AsyncRoute(key string) (Route, bool) {
	rt, ok := r.byKey[key]
	if !ok || rt.Kind != Async {
		return Route{}, false
	}

	return rt, true
}

func (r *Registry) register(t message.Type, rt Route) {
	if rt.Key == "" {
		panic("handler key must not be empty")
	}

	if rt.Handler == nil {
		panic(fmt.Sprintf("handler for %s must not be nil", rt.Key))
	}

	for _, x := range r.routes[t] {
		if x.Key == rt.Key {
			panic(fmt.Sprintf(
				"%s is already registered for %s events",
				rt.Key,
				t,
			))
		}
	}

	if x, ok := r.byKey[rt.Key]; ok && x.Kind != rt.Kind {
		panic(fmt.Sprintf(
			"%s is already registered with a different delivery mode",
			rt.Key,
		))
	}

	if r.routes == nil {
		r.routes = map[message.Type][]Route{}
		r.byKey = map[string]Route{}
	}

	r.routes[t] = append(r.routes[t], rt)
	r.byKey[rt.Key] = rt
}
