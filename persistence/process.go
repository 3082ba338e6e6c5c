package persistence

import (
	"context"

	"github.com/dogmatiq/marshalkit"
)

// ProcessInstance contains the persisted state of one saga instance.
type ProcessInstance struct {
	// HandlerKey is the identity key of the saga that owns the instance.
	HandlerKey string

	// InstanceID is the process instance ID. It is generated when the first
	// event of the saga is handled, and is opaque to the application.
	InstanceID string

	// Tag is an application-defined correlation tag, used to find the
	// instance before its ID is known to the publisher of an event. It may be
	// empty.
	Tag string

	// Revision is the instance's current version, used to enforce optimistic
	// concurrency control. A revision of zero means the instance has never
	// been persisted.
	Revision uint64

	// Packet contains the serialized representation of the workflow state.
	Packet marshalkit.Packet
}

// ProcessRepository is an interface for reading persisted process state.
type ProcessRepository interface {
	// LoadProcessInstance loads the process instance with the given ID.
	//
	// hk is the saga's identity key. If the instance does not exist, it
	// returns a ProcessInstance with a revision of zero.
	LoadProcessInstance(ctx context.Context, hk, id string) (ProcessInstance, error)

	// LoadProcessInstanceByTag loads the process instance with the given
	// correlation tag.
	//
	// It returns an UnknownTagError if no instance has the tag, or an
	// AmbiguousTagError if more than one does. The latter indicates a
	// data-integrity defect upstream; the repository never picks arbitrarily.
	LoadProcessInstanceByTag(ctx context.Context, hk, tag string) (ProcessInstance, error)
}

// SaveProcessInstance is an Operation that creates or updates a process
// instance.
type SaveProcessInstance struct {
	// Instance is the instance to persist.
	//
	// Instance.Revision must be the revision of the instance as currently
	// persisted, otherwise an optimistic concurrency conflict occurs and the
	// entire batch of operations is rejected.
	Instance ProcessInstance
}

// AcceptVisitor calls v.VisitSaveProcessInstance().
func (op SaveProcessInstance) AcceptVisitor(ctx context.Context, v OperationVisitor) error {
	return v.VisitSaveProcessInstance(ctx, op)
}

func (op SaveProcessInstance) entityKey() entityKey {
	return entityKey{"process", op.Instance.HandlerKey, op.Instance.InstanceID}
}
