package process

import (
	"github.com/dogmatiq/dodeca/logging"
	"github.com/quayside/commerce/envelope"
	"github.com/quayside/commerce/handler"
	"github.com/quayside/commerce/internal/mlog"
	"github.com/quayside/commerce/message"
)

// scope is the implementation of Scope that is passed to a manager while it
// handles an event. It is the manager-facing interface to a unit-of-work.
type scope struct {
	work       *handler.UnitOfWork
	cause      *envelope.Envelope
	packer     *envelope.Packer
	logger     logging.Logger
	instanceID string
}

// InstanceID returns the ID of the targeted process instance.
func (s *scope) InstanceID() string {
	return s.instanceID
}

// RecordEvent records an event caused by the one being handled.
func (s *scope) RecordEvent(ev message.Event) {
	s.work.RecordEvent(
		s.packer.PackChild(s.cause, ev),
	)
}

// Log records an informational message within the context of the event that
// is being handled.
func (s *scope) Log(f string, v ...interface{}) {
	mlog.LogFromScope(
		s.logger,
		s.cause,
		f,
		v,
	)
}
