package fixtures

import "fmt"

// EventA is a fixture event with no particular meaning.
type EventA struct {
	Value string
}

// EventB is a fixture event with no particular meaning, distinct in type
// from EventA.
type EventB struct {
	Value string
}

// ProcessRoot is a fixture process root.
type ProcessRoot struct {
	Value string
}

// MessageDescription returns a human-readable description of the event.
func (e EventA) MessageDescription() string {
	return fmt.Sprintf("event A: %s", e.Value)
}

// MessageDescription returns a human-readable description of the event.
func (e EventB) MessageDescription() string {
	return fmt.Sprintf("event B: %s", e.Value)
}
