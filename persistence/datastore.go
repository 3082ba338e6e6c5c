package persistence

import (
	"context"
	"errors"
)

// ErrDataStoreClosed is returned when performing any persistence operation on
// a closed data-store.
var ErrDataStoreClosed = errors.New("data store is closed")

// DataStore is an interface used to persist and retrieve process state.
type DataStore interface {
	ProcessRepository
	Persister

	// Close closes the data store.
	//
	// Closing a data-store prevents any further reads or writes; operations
	// on a closed data-store return ErrDataStoreClosed.
	Close() error
}

// Provider is an interface used to open the data store.
type Provider interface {
	// Open opens the data store.
	//
	// The caller is responsible for closing the returned data store.
	Open(ctx context.Context) (DataStore, error)
}
