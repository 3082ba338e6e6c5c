package fixtures

import "context"

// IdentityFacadeStub is a test implementation of the identity.Facade
// interface.
type IdentityFacadeStub struct {
	CreateAccountFunc func(context.Context, string, string, string) (string, error)
}

// CreateAccount creates a user account for a confirmed registration.
func (f *IdentityFacadeStub) CreateAccount(
	ctx context.Context,
	registrationID, email, mobile string,
) (string, error) {
	if f.CreateAccountFunc != nil {
		return f.CreateAccountFunc(ctx, registrationID, email, mobile)
	}

	return "", nil
}

// ShopFacadeStub is a test implementation of the shop.Facade interface.
type ShopFacadeStub struct {
	UpdateUserDataFunc   func(context.Context, string, string, string) error
	CreateStorefrontFunc func(context.Context, string) (string, error)
}

// UpdateUserData updates the shop-local copy of a user's contact details.
func (f *ShopFacadeStub) UpdateUserData(
	ctx context.Context,
	userID, email, mobile string,
) error {
	if f.UpdateUserDataFunc != nil {
		return f.UpdateUserDataFunc(ctx, userID, email, mobile)
	}

	return nil
}

// CreateStorefront creates a storefront for a new user.
func (f *ShopFacadeStub) CreateStorefront(
	ctx context.Context,
	userID string,
) (string, error) {
	if f.CreateStorefrontFunc != nil {
		return f.CreateStorefrontFunc(ctx, userID)
	}

	return "", nil
}

// InventoryFacadeStub is a test implementation of the inventory.Facade
// interface.
type InventoryFacadeStub struct {
	UpdateUserDataFunc         func(context.Context, string, string, string) error
	CreateDefaultWarehouseFunc func(context.Context, string) (string, error)
}

// UpdateUserData updates the inventory-local copy of a user's contact
// details.
func (f *InventoryFacadeStub) UpdateUserData(
	ctx context.Context,
	userID, email, mobile string,
) error {
	if f.UpdateUserDataFunc != nil {
		return f.UpdateUserDataFunc(ctx, userID, email, mobile)
	}

	return nil
}

// CreateDefaultWarehouse creates the default warehouse for a new user.
func (f *InventoryFacadeStub) CreateDefaultWarehouse(
	ctx context.Context,
	userID string,
) (string, error) {
	if f.CreateDefaultWarehouseFunc != nil {
		return f.CreateDefaultWarehouseFunc(ctx, userID)
	}

	return "", nil
}
