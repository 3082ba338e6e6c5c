package persistence

import (
	"context"
	"strings"
)

// Operation is a persistence operation that can be performed as part of an
// atomic batch.
type Operation interface {
	// AcceptVisitor calls the visit method on v that corresponds to the
	// operation's type.
	AcceptVisitor(ctx context.Context, v OperationVisitor) error

	// entityKey returns a value that identifies the persisted "entity" that
	// the operation manipulates. No two operations in the same batch may
	// manipulate the same entity.
	entityKey() entityKey
}

// OperationVisitor visits persistence operations based on their type.
type OperationVisitor interface {
	// VisitSaveProcessInstance visits a "SaveProcessInstance" operation.
	VisitSaveProcessInstance(ctx context.Context, op SaveProcessInstance) error
}

// entityKey identifies the entity that an operation manipulates.
type entityKey [3]string

func (k entityKey) String() string {
	return strings.Join(k[:], " ")
}
