// Package signup coordinates the multi-step user registration workflow
// across the identity, shop and inventory modules.
package signup

import (
	"context"
	"fmt"

	"github.com/quayside/commerce/identity"
	"github.com/quayside/commerce/inventory"
	"github.com/quayside/commerce/message"
	"github.com/quayside/commerce/process"
	"github.com/quayside/commerce/shop"
)

// HandlerKey uniquely identifies the saga.
const HandlerKey = "signup"

// Status is the stage the registration has reached.
type Status string

const (
	// StatusCreated indicates that the registration exists but has not been
	// confirmed by the user.
	StatusCreated Status = "created"

	// StatusConfirmed indicates that the user has confirmed the registration
	// and an account has been created for them.
	StatusConfirmed Status = "confirmed"

	// StatusCompleted indicates that the user's storefront and warehouse
	// have been provisioned. No further event may mutate the state.
	StatusCompleted Status = "completed"
)

// State is the persisted state of one registration workflow.
type State struct {
	RegistrationID string
	Email          string
	Mobile         string
	UserID         string
	StorefrontID   string
	WarehouseID    string
	Status         Status
}

// Manager implements the saga's logic.
type Manager struct {
	// Identity is the facade of the identity module.
	Identity identity.Facade

	// Shop is the facade of the shop module.
	Shop shop.Facade

	// Inventory is the facade of the inventory module.
	Inventory inventory.Facade
}

// New returns a new process root in its initial state.
func (m *Manager) New() process.Root {
	return &State{}
}

// RouteEventToInstance returns the instance that ev is routed to.
//
// Each registration has exactly one workflow, tagged with the registration's
// ID. Only the initial event may start a new instance.
func (m *Manager) RouteEventToInstance(
	_ context.Context,
	ev message.Event,
) (process.Route, bool, error) {
	switch ev := ev.(type) {
	case identity.RegistrationStarted:
		return process.Route{Tag: ev.RegistrationID, Start: true}, true, nil
	case identity.RegistrationConfirmed:
		return process.Route{Tag: ev.RegistrationID}, true, nil
	case identity.UserAccountCreated:
		return process.Route{Tag: ev.RegistrationID}, true, nil
	default:
		return process.Route{}, false, nil
	}
}

// HandleEvent applies ev to the process root r.
func (m *Manager) HandleEvent(
	ctx context.Context,
	r process.Root,
	s process.Scope,
	ev message.Event,
) error {
	st := r.(*State)

	switch ev := ev.(type) {
	case identity.RegistrationStarted:
		return m.start(st, s, ev)
	case identity.RegistrationConfirmed:
		return m.confirm(ctx, st, s, ev)
	case identity.UserAccountCreated:
		return m.provision(ctx, st, s, ev)
	default:
		return fmt.Errorf("no route is defined for %T events", ev)
	}
}

// start begins a new registration workflow.
func (m *Manager) start(
	st *State,
	s process.Scope,
	ev identity.RegistrationStarted,
) error {
	if st.Status != "" {
		return process.OrderingError{
			HandlerKey: HandlerKey,
			InstanceID: s.InstanceID(),
			Reason:     "the registration has already started",
		}
	}

	st.RegistrationID = ev.RegistrationID
	st.Email = ev.Email
	st.Mobile = ev.Mobile
	st.Status = StatusCreated

	s.Log("registration %s started", ev.RegistrationID)

	return nil
}

// confirm creates the user's account and records the resulting event.
func (m *Manager) confirm(
	ctx context.Context,
	st *State,
	s process.Scope,
	ev identity.RegistrationConfirmed,
) error {
	if st.Status != StatusCreated {
		return process.OrderingError{
			HandlerKey: HandlerKey,
			InstanceID: s.InstanceID(),
			Reason: fmt.Sprintf(
				"a %s registration can not be confirmed",
				st.Status,
			),
		}
	}

	userID, err := m.Identity.CreateAccount(ctx, st.RegistrationID, st.Email, st.Mobile)
	if err != nil {
		return err
	}

	st.UserID = userID
	st.Status = StatusConfirmed

	s.RecordEvent(identity.UserAccountCreated{
		RegistrationID: st.RegistrationID,
		UserID:         userID,
		Email:          st.Email,
		Mobile:         st.Mobile,
	})

	return nil
}

// provision creates the new user's storefront and default warehouse.
func (m *Manager) provision(
	ctx context.Context,
	st *State,
	s process.Scope,
	ev identity.UserAccountCreated,
) error {
	if st.Status != StatusConfirmed {
		return process.OrderingError{
			HandlerKey: HandlerKey,
			InstanceID: s.InstanceID(),
			Reason: fmt.Sprintf(
				"a %s registration can not be provisioned",
				st.Status,
			),
		}
	}

	storefrontID, err := m.Shop.CreateStorefront(ctx, ev.UserID)
	if err != nil {
		return err
	}

	warehouseID, err := m.Inventory.CreateDefaultWarehouse(ctx, ev.UserID)
	if err != nil {
		return err
	}

	st.StorefrontID = storefrontID
	st.WarehouseID = warehouseID
	st.Status = StatusCompleted

	s.Log("registration %s completed for user %s", st.RegistrationID, ev.UserID)

	return nil
}
