// Package shop defines the facade of the shop module, which owns storefronts
// and the shop-local copy of user data.
package shop

import "context"

// Facade is the narrow interface the shop module exposes to the sagas.
//
// Its operations are expected to be safe to call more than once with the
// same arguments, as events may be redelivered.
type Facade interface {
	// UpdateUserData updates the shop-local copy of a user's contact details.
	UpdateUserData(ctx context.Context, userID, email, mobile string) error

	// CreateStorefront creates a storefront for a new user and returns the
	// ID of the storefront.
	CreateStorefront(ctx context.Context, userID string) (storefrontID string, err error)
}
