// Package memorypersistence provides a persistence provider that stores
// process state in memory.
package memorypersistence

import (
	"context"

	"github.com/quayside/commerce/persistence"
)

// Provider is an implementation of persistence.Provider that stores process
// state in memory.
type Provider struct{}

// Open opens the data store.
func (p *Provider) Open(ctx context.Context) (persistence.DataStore, error) {
	return NewDataStore(), nil
}

// NewDataStore returns an empty in-memory data store.
func NewDataStore() persistence.DataStore {
	return &dataStore{
		instances: map[instanceKey]persistence.ProcessInstance{},
	}
}
