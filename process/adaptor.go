package process

import (
	"context"
	"fmt"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/marshalkit"
	"github.com/google/uuid"
	"github.com/quayside/commerce/envelope"
	"github.com/quayside/commerce/handler"
	"github.com/quayside/commerce/internal/mlog"
	"github.com/quayside/commerce/locking"
	"github.com/quayside/commerce/persistence"
)

// Adaptor exposes a Manager as a handler.Handler.
//
// It routes each event to the instance the manager nominates, serializes
// access to that instance with a named lock, loads its persisted state, and
// stages the updated state in the unit-of-work after the manager has handled
// the event.
type Adaptor struct {
	// Key uniquely identifies the saga that the manager implements.
	Key string

	// Handler is the manager that implements the saga's logic.
	Handler Manager

	// Loader is used to load process instances into memory.
	Loader *Loader

	// Marshaler is used to marshal process roots for persistence.
	Marshaler marshalkit.ValueMarshaler

	// Locks is the namespace used to serialize access to each instance.
	Locks *locking.Namespace

	// LockTimeout is the maximum time to wait to acquire an instance's lock.
	// If it is zero, locking.DefaultTimeout is used.
	LockTimeout time.Duration

	// Packer is used to create envelopes for events recorded by the manager.
	Packer *envelope.Packer

	// GenerateID is used to produce IDs for new instances. If it is nil,
	// time-ordered UUIDs are used.
	GenerateID func() string

	// Logger is the target for log messages produced within the handler.
	// If it is nil, logging.DefaultLogger is used.
	Logger logging.Logger
}

// HandleMessage handles the event in env.
func (a *Adaptor) HandleMessage(
	ctx context.Context,
	w *handler.UnitOfWork,
	env *envelope.Envelope,
) (err error) {
	defer mlog.LogHandlerResult(
		a.Logger,
		env,
		a.Key,
		&err,
		"",
	)

	r, ok, err := a.route(ctx, env)
	if !ok || err != nil {
		return err
	}

	// Hold the instance's lock for the remainder of the unit-of-work, so that
	// the lock is not released until the instance's state has been persisted,
	// or the unit-of-work has failed. The observers are notified on every
	// path, including handler errors, so the lock is always released.
	//
	// The lock is keyed on the tag when one is present, so that concurrent
	// deliveries that resolve the same tag contend for the same lock even
	// before an instance ID has been assigned.
	name := r.Tag
	if name == "" {
		name = r.InstanceID
	}

	if err := a.lock(ctx, w, name); err != nil {
		return err
	}

	inst, err := a.resolve(ctx, w, r)
	if err != nil {
		return err
	}

	sc := &scope{
		work:       w,
		cause:      env,
		packer:     a.Packer,
		logger:     a.Logger,
		instanceID: inst.InstanceID,
	}

	if err := a.Handler.HandleEvent(ctx, inst.Root, sc, env.Message); err != nil {
		return err
	}

	return a.save(w, inst)
}

// route asks the manager which instance the event in env is destined for.
//
// It panics if the manager indicates that the event must be routed but
// identifies the instance with neither an ID nor a tag.
func (a *Adaptor) route(ctx context.Context, env *envelope.Envelope) (Route, bool, error) {
	r, ok, err := a.Handler.RouteEventToInstance(ctx, env.Message)
	if err != nil {
		return Route{}, false, err
	}

	if ok && r.InstanceID == "" && r.Tag == "" {
		panic(fmt.Sprintf(
			"%T.RouteEventToInstance() returned a route with no instance ID or tag while routing a %T event",
			a.Handler,
			env.Message,
		))
	}

	return r, ok, nil
}

// lock acquires the named lock that guards an instance, and arranges for it
// to be released when the unit-of-work is complete.
func (a *Adaptor) lock(
	ctx context.Context,
	w *handler.UnitOfWork,
	name string,
) error {
	unlock, err := a.Locks.LockFor(
		ctx,
		locking.Key{
			Saga:       a.Key,
			InstanceID: name,
			Step:       "handle",
		},
		a.LockTimeout,
	)
	if err != nil {
		return err
	}

	w.Observe(func(handler.Result, error) {
		unlock()
	})

	return nil
}

// resolve loads the instance identified by r, creating a new one if the route
// permits it.
func (a *Adaptor) resolve(
	ctx context.Context,
	w *handler.UnitOfWork,
	r Route,
) (*Instance, error) {
	if r.InstanceID != "" {
		inst, err := a.Loader.Load(ctx, a.Key, r.InstanceID, a.new())
		if err != nil {
			return nil, err
		}

		// If the route addressed the instance by ID alone but the instance is
		// correlated by a tag, other deliveries may address it by that tag, so
		// the tag's lock is the instance's canonical guard. Acquire it as well
		// and re-load the state it protects. The ID lock is always taken
		// before the tag lock, so the two can not deadlock.
		if r.Tag == "" && inst.Tag != "" {
			if err := a.lock(ctx, w, inst.Tag); err != nil {
				return nil, err
			}

			inst, err = a.Loader.Load(ctx, a.Key, r.InstanceID, a.new())
			if err != nil {
				return nil, err
			}
		}

		if inst.Revision == 0 && !r.Start {
			return nil, OrderingError{
				HandlerKey: a.Key,
				InstanceID: r.InstanceID,
				Reason:     "the instance does not exist",
			}
		}

		if r.Tag != "" {
			inst.Tag = r.Tag
		}

		return inst, nil
	}

	inst, ok, err := a.Loader.LoadByTag(ctx, a.Key, r.Tag)
	if err != nil {
		return nil, err
	}

	if ok {
		return inst, nil
	}

	if !r.Start {
		return nil, OrderingError{
			HandlerKey: a.Key,
			InstanceID: r.Tag,
			Reason:     "no instance has this tag",
		}
	}

	return &Instance{
		ProcessInstance: persistence.ProcessInstance{
			HandlerKey: a.Key,
			InstanceID: a.generateID(),
			Tag:        r.Tag,
		},
		Root: a.new(),
	}, nil
}

// save stages the instance's state in the unit-of-work.
func (a *Adaptor) save(w *handler.UnitOfWork, inst *Instance) error {
	p, err := a.Marshaler.Marshal(inst.Root)
	if err != nil {
		return err
	}

	inst.Packet = p

	w.Do(persistence.SaveProcessInstance{
		Instance: inst.ProcessInstance,
	})

	return nil
}

// new returns a new process root created by the manager, or panics if the
// manager returns nil.
func (a *Adaptor) new() Root {
	if r := a.Handler.New(); r != nil {
		return r
	}

	panic(fmt.Sprintf("%T.New() returned nil", a.Handler))
}

// generateID returns an ID for a new instance.
func (a *Adaptor) generateID() string {
	if a.GenerateID != nil {
		return a.GenerateID()
	}

	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}

	return id.String()
}
