package envelope

import (
	"time"

	"github.com/google/uuid"
	"github.com/quayside/commerce/message"
)

// Packer puts events into envelopes.
type Packer struct {
	// GenerateID is a function used to generate new message IDs. If it is
	// nil, a UUID is generated.
	GenerateID func() string

	// Now is a function used to get the current time. If it is nil,
	// time.Now() is used.
	Now func() time.Time
}

// Pack returns a new envelope containing the given event.
//
// The returned envelope begins a new causal chain; its causation and
// correlation IDs are equal to its message ID.
func (p *Packer) Pack(ev message.Event) *Envelope {
	id := p.generateID()

	return &Envelope{
		MetaData{
			MessageID:     id,
			CausationID:   id,
			CorrelationID: id,
			CreatedAt:     p.now(),
		},
		ev,
	}
}

// PackChild returns a new envelope containing the given event, recorded as a
// consequence of the event in cause.
func (p *Packer) PackChild(cause *Envelope, ev message.Event) *Envelope {
	return &Envelope{
		MetaData{
			MessageID:     p.generateID(),
			CausationID:   cause.MessageID,
			CorrelationID: cause.CorrelationID,
			CreatedAt:     p.now(),
		},
		ev,
	}
}

// generateID calls p.GenerateID, or returns a new UUID if it is nil.
func (p *Packer) generateID() string {
	if p.GenerateID != nil {
		return p.GenerateID()
	}

	return uuid.NewString()
}

// now calls p.Now, or returns the current time if it is nil.
func (p *Packer) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}

	return time.Now()
}
