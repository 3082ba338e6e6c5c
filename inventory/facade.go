// Package inventory defines the facade of the inventory module, which owns
// warehouses and the inventory-local copy of user data.
package inventory

import "context"

// Facade is the narrow interface the inventory module exposes to the sagas.
//
// Its operations are expected to be safe to call more than once with the
// same arguments, as events may be redelivered.
type Facade interface {
	// UpdateUserData updates the inventory-local copy of a user's contact
	// details.
	UpdateUserData(ctx context.Context, userID, email, mobile string) error

	// CreateDefaultWarehouse creates the default warehouse for a new user and
	// returns the ID of the warehouse.
	CreateDefaultWarehouse(ctx context.Context, userID string) (warehouseID string, err error)
}
