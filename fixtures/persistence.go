package fixtures

import (
	"context"

	"github.com/quayside/commerce/persistence"
	"github.com/quayside/commerce/persistence/memorypersistence"
)

// ProviderStub is a test implementation of the persistence.Provider
// interface.
type ProviderStub struct {
	persistence.Provider

	OpenFunc func(context.Context) (persistence.DataStore, error)
}

// Open opens the data store.
func (p *ProviderStub) Open(ctx context.Context) (persistence.DataStore, error) {
	if p.OpenFunc != nil {
		return p.OpenFunc(ctx)
	}

	if p.Provider != nil {
		ds, err := p.Provider.Open(ctx)
		if ds != nil {
			ds = &DataStoreStub{DataStore: ds}
		}
		return ds, err
	}

	return nil, nil
}

// DataStoreStub is a test implementation of the persistence.DataStore
// interface.
type DataStoreStub struct {
	persistence.DataStore

	LoadProcessInstanceFunc      func(context.Context, string, string) (persistence.ProcessInstance, error)
	LoadProcessInstanceByTagFunc func(context.Context, string, string) (persistence.ProcessInstance, error)
	PersistFunc                  func(context.Context, persistence.Batch) error
	CloseFunc                    func() error
}

// NewDataStoreStub returns a new data-store stub that uses an in-memory
// persistence provider.
func NewDataStoreStub() *DataStoreStub {
	p := &ProviderStub{
		Provider: &memorypersistence.Provider{},
	}

	ds, err := p.Open(context.Background())
	if err != nil {
		panic(err)
	}

	return ds.(*DataStoreStub)
}

// LoadProcessInstance loads a process instance.
func (ds *DataStoreStub) LoadProcessInstance(
	ctx context.Context,
	hk, id string,
) (persistence.ProcessInstance, error) {
	if ds.LoadProcessInstanceFunc != nil {
		return ds.LoadProcessInstanceFunc(ctx, hk, id)
	}

	if ds.DataStore != nil {
		return ds.DataStore.LoadProcessInstance(ctx, hk, id)
	}

	return persistence.ProcessInstance{}, nil
}

// LoadProcessInstanceByTag loads the process instance with a specific tag.
func (ds *DataStoreStub) LoadProcessInstanceByTag(
	ctx context.Context,
	hk, tag string,
) (persistence.ProcessInstance, error) {
	if ds.LoadProcessInstanceByTagFunc != nil {
		return ds.LoadProcessInstanceByTagFunc(ctx, hk, tag)
	}

	if ds.DataStore != nil {
		return ds.DataStore.LoadProcessInstanceByTag(ctx, hk, tag)
	}

	return persistence.ProcessInstance{}, nil
}

// Persist commits a batch of operations atomically.
func (ds *DataStoreStub) Persist(ctx context.Context, b persistence.Batch) error {
	if ds.PersistFunc != nil {
		return ds.PersistFunc(ctx, b)
	}

	if ds.DataStore != nil {
		return ds.DataStore.Persist(ctx, b)
	}

	return nil
}

// Close closes the data store.
func (ds *DataStoreStub) Close() error {
	if ds.CloseFunc != nil {
		return ds.CloseFunc()
	}

	if ds.DataStore != nil {
		return ds.DataStore.Close()
	}

	return nil
}

// PersisterStub is a test implementation of the persistence.Persister
// interface.
type PersisterStub struct {
	persistence.Persister

	PersistFunc func(context.Context, persistence.Batch) error
}

// Persist commits a batch of operations atomically.
func (p *PersisterStub) Persist(ctx context.Context, b persistence.Batch) error {
	if p.PersistFunc != nil {
		return p.PersistFunc(ctx, b)
	}

	if p.Persister != nil {
		return p.Persister.Persist(ctx, b)
	}

	return nil
}
