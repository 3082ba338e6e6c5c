// Package locking provides named, context-aware locks used to serialize
// access to saga instances.
package locking

// Key identifies the resource guarded by a lock.
type Key struct {
	// Saga is the key of the saga that owns the resource.
	Saga string

	// InstanceID is the ID or tag of the instance being guarded.
	InstanceID string

	// Step is the operation being performed on the instance.
	Step string
}

// String returns a deterministic representation of the key.
//
// Keys with equal fields always produce the same string, so two lockers
// contending for the same resource always contend for the same lock.
func (k Key) String() string {
	return k.Saga + "/" + k.InstanceID + "/" + k.Step
}
