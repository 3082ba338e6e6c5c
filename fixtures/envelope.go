package fixtures

import (
	"time"

	"github.com/google/uuid"
	"github.com/quayside/commerce/envelope"
	"github.com/quayside/commerce/message"
)

// NewEnvelope returns a new envelope containing the given event.
//
// If id is empty, a new UUID is generated.
func NewEnvelope(
	id string,
	ev message.Event,
	times ...time.Time,
) *envelope.Envelope {
	if id == "" {
		id = uuid.NewString()
	}

	env := &envelope.Envelope{
		MetaData: envelope.MetaData{
			MessageID:     id,
			CausationID:   "<cause>",
			CorrelationID: "<correlation>",
		},
		Message: ev,
	}

	switch len(times) {
	case 0:
		env.CreatedAt = time.Now()
	case 1:
		env.CreatedAt = times[0]
	default:
		panic("too many times specified")
	}

	return env
}
