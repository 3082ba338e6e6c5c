package handler

import "github.com/quayside/commerce/envelope"

// Result is the result of a unit-of-work.
type Result struct {
	// Events is the set of events that were recorded in the unit-of-work, in
	// the order they were recorded.
	Events []*envelope.Envelope
}

// Observer is a function that is notified of the result of a unit-of-work.
//
// If the unit-of-work could not be persisted, err is non-nil and the result
// reflects the state changes that were attempted but discarded.
type Observer func(Result, error)
