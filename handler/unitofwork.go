package handler

import (
	"github.com/quayside/commerce/envelope"
	"github.com/quayside/commerce/persistence"
)

// UnitOfWork encapsulates the state changes made by a handler in the process
// of handling a single event.
type UnitOfWork struct {
	result    Result
	batch     persistence.Batch
	observers []Observer
}

// RecordEvent records an event to be published when the unit-of-work is
// persisted successfully.
//
// Events are published in the order they are recorded.
func (w *UnitOfWork) RecordEvent(env *envelope.Envelope) {
	w.result.Events = append(w.result.Events, env)
}

// Do adds an arbitrary persistence operation to the unit-of-work.
func (w *UnitOfWork) Do(op persistence.Operation) {
	w.batch = append(w.batch, op)
}

// Observe registers a function to be notified when the unit-of-work is
// complete.
func (w *UnitOfWork) Observe(o Observer) {
	w.observers = append(w.observers, o)
}

// notifyObservers calls each of the observers registered with the
// unit-of-work.
func (w *UnitOfWork) notifyObservers(err error) {
	for _, o := range w.observers {
		o(w.result, err)
	}
}
