// Package usersync propagates user contact-detail changes from the identity
// module to the shop and inventory modules.
package usersync

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
const HandlerKey = "usersync"

// Status is the stage the workflow has reached.
type Status string

const (
	// StatusStarted indicates that the workflow has begun but the user data
	// has not yet reached every module.
	StatusStarted Status = "STARTED"

	// StatusFinished indicates that the user data has been propagated to
	// every module. No further event may mutate the state.
	StatusFinished Status = "FINISHED"
)

// PropagationState is the persisted state of one propagation workflow.
type PropagationState struct {
	UserID string
	Status Status
}

// Manager implements the saga's logic.
type Manager struct {
	// Shop is the facade of the shop module.
	Shop shop.Facade

	// Inventory is the facade of the inventory module.
	Inventory inventory.Facade
}

// New returns a new process root in its initial state.
func (m *Manager) New() process.Root {
	return &PropagationState{}
}

// RouteEventToInstance returns the instance that ev is routed to.
//
// Each user has at most one propagation workflow, tagged with the user's ID.
func (m *Manager) RouteEventToInstance(
	_ context.Context,
	ev message.Event,
) (process.Route, bool, error) {
	switch ev := ev.(type) {
	case identity.UserDataEmitted:
		return process.Route{Tag: ev.UserID, Start: true}, true, nil
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
	st := r.(*PropagationState)

	switch ev := ev.(type) {
	case identity.UserDataEmitted:
		return m.propagate(ctx, st, s, ev)
	default:
		return fmt.Errorf("no route is defined for %T events", ev)
	}
}

// propagate pushes the user data in ev to the shop and inventory modules.
func (m *Manager) propagate(
	ctx context.Context,
	st *PropagationState,
	s process.Scope,
	ev identity.UserDataEmitted,
) error {
	if st.Status == StatusFinished {
		return process.OrderingError{
			HandlerKey: HandlerKey,
			InstanceID: s.InstanceID(),
			Reason:     "the user data has already been propagated",
		}
	}

	st.UserID = ev.UserID
	st.Status = StatusStarted

	if err := m.Shop.UpdateUserData(ctx, ev.UserID, ev.Email, ev.Mobile); err != nil {
		return err
	}

	if err := m.Inventory.UpdateUserData(ctx, ev.UserID, ev.Email, ev.Mobile); err != nil {
		return err
	}

	st.Status = StatusFinished

	s.Log("propagated user data for %s", ev.UserID)

	return nil
}
