package boltpersistence

import (
	"context"
	"sync"

	"github.com/quayside/commerce/internal/x/bboltx"
	"github.com/quayside/commerce/persistence"
	"go.etcd.io/bbolt"
)

// dataStore is an implementation of persistence.DataStore for BoltDB.
type dataStore struct {
	db    *bbolt.DB
	close func(*bbolt.DB) error

	m      sync.RWMutex
	closed bool
}

// Persist commits a batch of operations atomically.
func (ds *dataStore) Persist(ctx context.Context, b persistence.Batch) (err error) {
	defer bboltx.Recover(&err)

	b.MustValidate()

	ds.m.RLock()
	defer ds.m.RUnlock()

	if ds.closed {
		return persistence.ErrDataStoreClosed
	}

	return ds.db.Update(
		func(tx *bbolt.Tx) error {
			return b.AcceptVisitor(ctx, &committer{tx})
		},
	)
}

// Close closes the data store.
func (ds *dataStore) Close() error {
	ds.m.Lock()
	defer ds.m.Unlock()

	if ds.closed {
		return persistence.ErrDataStoreClosed
	}

	ds.closed = true

	return ds.close(ds.db)
}

// begin returns the database, or an error if the data-store is closed.
//
// The returned function must be called to release the data-store for closing.
func (ds *dataStore) begin() (*bbolt.DB, func(), error) {
	ds.m.RLock()

	if ds.closed {
		ds.m.RUnlock()
		return nil, nil, persistence.ErrDataStoreClosed
	}

	return ds.db, ds.m.RUnlock, nil
}
