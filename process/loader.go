package process

import (
	"context"

	"github.com/dogmatiq/marshalkit"
	"github.com/quayside/commerce/persistence"
)

// Instance is an in-memory representation of a process instance.
type Instance struct {
	persistence.ProcessInstance
	Root Root
}

// Loader loads process instances from a data-store.
type Loader struct {
	// Repository is the repository used to load persisted instances.
	Repository persistence.ProcessRepository

	// Marshaler is used to unmarshal persisted process roots.
	Marshaler marshalkit.ValueMarshaler
}

// Load loads the process instance with the given ID.
//
// If the instance has never been persisted, the returned instance has a
// revision of zero and base as its root.
func (l *Loader) Load(
	ctx context.Context,
	hk, id string,
	base Root,
) (*Instance, error) {
	persisted, err := l.Repository.LoadProcessInstance(ctx, hk, id)
	if err != nil {
		return nil, err
	}

	inst := &Instance{
		ProcessInstance: persisted,
	}

	if inst.Revision == 0 {
		inst.Root = base
		return inst, nil
	}

	r, err := l.Marshaler.Unmarshal(persisted.Packet)
	if err != nil {
		return nil, err
	}

	inst.Root = r

	return inst, nil
}

// LoadByTag loads the process instance with the given tag.
//
// ok is false if no instance has the tag.
func (l *Loader) LoadByTag(
	ctx context.Context,
	hk, tag string,
) (*Instance, bool, error) {
	persisted, err := l.Repository.LoadProcessInstanceByTag(ctx, hk, tag)
	if err != nil {
		if _, ok := err.(persistence.UnknownTagError); ok {
			return nil, false, nil
		}

		return nil, false, err
	}

	r, err := l.Marshaler.Unmarshal(persisted.Packet)
	if err != nil {
		return nil, false, err
	}

	return &Instance{
		ProcessInstance: persisted,
		Root:            r,
	}, true, nil
}
