// Package identity defines the events and facade of the identity module,
// which owns user registration and user accounts.
package identity

import "fmt"

// RegistrationStarted is an event indicating that a new user has begun the
// signup flow.
type RegistrationStarted struct {
	RegistrationID string
	Email          string
	Mobile         string
}

// RegistrationConfirmed is an event indicating that a user has verified
// their contact details.
type RegistrationConfirmed struct {
	RegistrationID string
}

// UserAccountCreated is an event indicating that a user account has been
// created for a confirmed registration.
type UserAccountCreated struct {
	RegistrationID string
	UserID         string
	Email          string
	Mobile         string
}

// UserDataEmitted is an event indicating that a user's contact details have
// changed and must be propagated to the other modules.
type UserDataEmitted struct {
	UserID string
	Email  string
	Mobile string
}

// MessageDescription returns a human-readable description of the event.
func (e RegistrationStarted) MessageDescription() string {
	return fmt.Sprintf("registration %s started for %s", e.RegistrationID, e.Email)
}

// MessageDescription returns a human-readable description of the event.
func (e RegistrationConfirmed) MessageDescription() string {
	return fmt.Sprintf("registration %s confirmed", e.RegistrationID)
}

// MessageDescription returns a human-readable description of the event.
func (e UserAccountCreated) MessageDescription() string {
	return fmt.Sprintf("user account %s created for registration %s", e.UserID, e.RegistrationID)
}

// MessageDescription returns a human-readable description of the event.
func (e UserDataEmitted) MessageDescription() string {
	return fmt.Sprintf("user data emitted for %s", e.UserID)
}
