// Package process provides the process manager shell used to run sagas that
// coordinate state changes across the commerce modules.
package process

import (
	"context"

	"github.com/quayside/commerce/message"
)

// Root is an application-defined representation of a process instance's
// state.
//
// Roots must be registered with the marshaler used by the Adaptor so that
// they can be persisted between events.
type Root interface{}

// Route describes the process instance that an event is routed to.
type Route struct {
	// InstanceID is the ID of the instance. It may be empty if the instance
	// is located by tag alone.
	InstanceID string

	// Tag is a secondary, application-defined identifier for the instance,
	// such as the ID of the business entity the process is acting on. It may
	// be empty.
	Tag string

	// Start indicates that the event is allowed to start a new instance if no
	// existing instance matches.
	Start bool
}

// Scope is the interface through which a manager interacts with the engine
// while handling an event.
type Scope interface {
	// InstanceID returns the ID of the targeted process instance.
	InstanceID() string

	// RecordEvent records an event caused by the one being handled.
	//
	// The event is published only if the instance's state is persisted
	// successfully.
	RecordEvent(ev message.Event)

	// Log records an informational message within the context of the event
	// that is being handled.
	Log(f string, v ...interface{})
}

// Manager is the application-defined logic of a saga.
type Manager interface {
	// New returns a new process root in its initial state.
	New() Root

	// RouteEventToInstance returns the instance that ev is routed to.
	//
	// If ok is false the event is not destined for this saga and is ignored.
	RouteEventToInstance(ctx context.Context, ev message.Event) (r Route, ok bool, err error)

	// HandleEvent applies ev to the process root r.
	//
	// State changes made to r and events recorded via s take effect only if
	// HandleEvent returns nil.
	HandleEvent(ctx context.Context, r Root, s Scope, ev message.Event) error
}
