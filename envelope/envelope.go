// Package envelope contains the meta-data wrapper used to carry domain events
// between the commerce modules.
package envelope

import (
	"time"

	"github.com/quayside/commerce/message"
)

// Envelope is a container for an event and its meta-data.
type Envelope struct {
	MetaData

	// Message is the event carried inside the envelope.
	Message message.Event
}

// MetaData is information about an event that is not part of the event's own
// payload.
type MetaData struct {
	// MessageID is a unique identifier for the event.
	MessageID string

	// CausationID is the ID of the event that was being handled when this
	// event was recorded. For events recorded outside of any handler it is
	// the same as MessageID.
	CausationID string

	// CorrelationID is the ID of the "root" event that began the causal chain
	// this event belongs to.
	CorrelationID string

	// CreatedAt is the time at which the event was recorded.
	CreatedAt time.Time
}
