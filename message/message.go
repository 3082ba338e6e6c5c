package message

// Event is an immutable record of a fact that occurred within one of the
// commerce modules.
//
// Cross-module events are the stable contract between bounded contexts. Their
// field names and presence are load-bearing and must not change without a
// coordinated multi-module update.
type Event interface {
	// MessageDescription returns a human-readable description of the event.
	MessageDescription() string
}
