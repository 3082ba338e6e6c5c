package persistence

import (
	"fmt"
)

// ConflictError is an error indicating that one or more operations within a
// batch caused an optimistic concurrency conflict.
type ConflictError struct {
	// Cause is the operation that caused the conflict.
	Cause Operation
}

func (e ConflictError) Error() string {
	return fmt.Sprintf(
		"optimistic concurrency conflict in %T operation",
		e.Cause,
	)
}

// UnknownTagError is an error indicating that no process instance carries a
// given correlation tag.
type UnknownTagError struct {
	// HandlerKey is the identity key of the saga that was queried.
	HandlerKey string

	// Tag is the correlation tag that did not match any instance.
	Tag string
}

func (e UnknownTagError) Error() string {
	return fmt.Sprintf(
		"no process instance of %s is tagged '%s'",
		e.HandlerKey,
		e.Tag,
	)
}

// AmbiguousTagError is an error indicating that more than one process
// instance carries the same correlation tag.
//
// A tag is required to resolve to exactly one instance; multiple matches
// indicate a data-integrity defect upstream, and are never resolved by
// picking an arbitrary instance.
type AmbiguousTagError struct {
	// HandlerKey is the identity key of the saga that was queried.
	HandlerKey string

	// Tag is the correlation tag that matched multiple instances.
	Tag string

	// InstanceIDs are the IDs of the instances that carry the tag.
	InstanceIDs []string
}

func (e AmbiguousTagError) Error() string {
	return fmt.Sprintf(
		"%d process instances of %s are tagged '%s'",
		len(e.InstanceIDs),
		e.HandlerKey,
		e.Tag,
	)
}
