package identity

import "context"

// Facade is the narrow interface the identity module exposes to the sagas.
//
// Its operations are expected to be safe to call more than once with the
// same arguments, as events may be redelivered.
type Facade interface {
	// CreateAccount creates a user account for a confirmed registration and
	// returns the ID of the new user.
	CreateAccount(ctx context.Context, registrationID, email, mobile string) (userID string, err error)
}
