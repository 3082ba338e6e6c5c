package memorypersistence

import (
	"context"
	"sort"
	"sync"

	"github.com/quayside/commerce/persistence"
)

// instanceKey identifies a process instance within the data store.
type instanceKey struct {
	HandlerKey string
	InstanceID string
}

// dataStore is an implementation of persistence.DataStore that keeps all data
// in memory.
type dataStore struct {
	m         sync.RWMutex
	closed    bool
	instances map[instanceKey]persistence.ProcessInstance
}

// LoadProcessInstance loads the process instance with the given ID.
func (ds *dataStore) LoadProcessInstance(
	ctx context.Context,
	hk, id string,
) (persistence.ProcessInstance, error) {
	ds.m.RLock()
	defer ds.m.RUnlock()

	if ds.closed {
		return persistence.ProcessInstance{}, persistence.ErrDataStoreClosed
	}

	if inst, ok := ds.instances[instanceKey{hk, id}]; ok {
		return inst, nil
	}

	return persistence.ProcessInstance{
		HandlerKey: hk,
		InstanceID: id,
	}, nil
}

// LoadProcessInstanceByTag loads the process instance with the given
// correlation tag.
func (ds *dataStore) LoadProcessInstanceByTag(
	ctx context.Context,
	hk, tag string,
) (persistence.ProcessInstance, error) {
	ds.m.RLock()
	defer ds.m.RUnlock()

	if ds.closed {
		return persistence.ProcessInstance{}, persistence.ErrDataStoreClosed
	}

	var matches []persistence.ProcessInstance

	for k, inst := range ds.instances {
		if k.HandlerKey == hk && inst.Tag == tag {
			matches = append(matches, inst)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return persistence.ProcessInstance{}, persistence.UnknownTagError{
			HandlerKey: hk,
			Tag:        tag,
		}
	default:
		ids := make([]string, len(matches))
		for i, inst := range matches {
			ids[i] = inst.InstanceID
		}
		sort.Strings(ids)

		return persistence.ProcessInstance{}, persistence.AmbiguousTagError{
			HandlerKey:  hk,
			Tag:         tag,
			InstanceIDs: ids,
		}
	}
}

// Persist commits a batch of operations atomically.
func (ds *dataStore) Persist(ctx context.Context, b persistence.Batch) error {
	b.MustValidate()

	ds.m.Lock()
	defer ds.m.Unlock()

	if ds.closed {
		return persistence.ErrDataStoreClosed
	}

	// Validate every operation before applying any of them, so that a
	// conflict mid-batch can not leave a partially-applied batch behind.
	v := &validator{ds}
	if err := b.AcceptVisitor(ctx, v); err != nil {
		return err
	}

	c := &committer{ds}
	return b.AcceptVisitor(ctx, c)
}

// Close closes the data store.
func (ds *dataStore) Close() error {
	ds.m.Lock()
	defer ds.m.Unlock()

	if ds.closed {
		return persistence.ErrDataStoreClosed
	}

	ds.closed = true

	return nil
}

// validator returns an error if an operation can not be applied to the
// database.
type validator struct {
	ds *dataStore
}

// VisitSaveProcessInstance returns an error if a "SaveProcessInstance"
// operation can not be applied to the database.
func (v *validator) VisitSaveProcessInstance(
	_ context.Context,
	op persistence.SaveProcessInstance,
) error {
	inst := op.Instance
	old := v.ds.instances[instanceKey{inst.HandlerKey, inst.InstanceID}]

	if inst.Revision == old.Revision {
		return nil
	}

	return persistence.ConflictError{
		Cause: op,
	}
}

// committer applies the changes in an operation to the database.
type committer struct {
	ds *dataStore
}

// VisitSaveProcessInstance applies the changes in a "SaveProcessInstance"
// operation to the database.
func (c *committer) VisitSaveProcessInstance(
	_ context.Context,
	op persistence.SaveProcessInstance,
) error {
	inst := op.Instance
	inst.Revision++

	// Clone the packet data so that the caller can not mutate persisted
	// state retroactively.
	inst.Packet.Data = append([]byte(nil), inst.Packet.Data...)

	c.ds.instances[instanceKey{inst.HandlerKey, inst.InstanceID}] = inst

	return nil
}
