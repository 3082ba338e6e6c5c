package main

import (
	"context"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/google/uuid"
)

// The facades below stand in for the other bounded contexts, which live in
// their own services. They log the calls they receive.

type identityFacade struct {
	logger logging.Logger
}

func (f *identityFacade) CreateAccount(
	_ context.Context,
	registrationID, email, _ string,
) (string, error) {
	userID := uuid.NewString()
	logging.Log(f.logger, "identity: created account %s (%s) for registration %s", userID, email, registrationID)
	return userID, nil
}

type shopFacade struct {
	logger logging.Logger
}

func (f *shopFacade) UpdateUserData(
	_ context.Context,
	userID, email, mobile string,
) error {
	logging.Log(f.logger, "shop: updated user data for %s", userID)
	return nil
}

func (f *shopFacade) CreateStorefront(
	_ context.Context,
	userID string,
) (string, error) {
	storefrontID := uuid.NewString()
	logging.Log(f.logger, "shop: created storefront %s for user %s", storefrontID, userID)
	return storefrontID, nil
}

type inventoryFacade struct {
	logger logging.Logger
}

func (f *inventoryFacade) UpdateUserData(
	_ context.Context,
	userID, email, mobile string,
) error {
	logging.Log(f.logger, "inventory: updated user data for %s", userID)
	return nil
}

func (f *inventoryFacade) CreateDefaultWarehouse(
	_ context.Context,
	userID string,
) (string, error) {
	warehouseID := uuid.NewString()
	logging.Log(f.logger, "inventory: created warehouse %s for user %s", warehouseID, userID)
	return warehouseID, nil
}
