package process

import "fmt"

// OrderingError indicates that an event arrived at a process instance in a
// state that can not accept it, such as a redelivery of an event that the
// instance has already incorporated.
//
// It is a permanent failure; retrying the event can not succeed.
type OrderingError struct {
	// HandlerKey is the key of the saga that rejected the event.
	HandlerKey string

	// InstanceID is the ID of the instance that rejected the event.
	InstanceID string

	// Reason describes why the event can not be accepted.
	Reason string
}

func (e OrderingError) Error() string {
	return fmt.Sprintf(
		"event can not be applied to %s instance %s: %s",
		e.HandlerKey,
		e.InstanceID,
		e.Reason,
	)
}
