// Package boltpersistence provides a persistence provider that stores process
// state in a BoltDB database.
package boltpersistence

import (
	"context"
	"os"

	"github.com/quayside/commerce/internal/x/bboltx"
	"github.com/quayside/commerce/persistence"
	"go.etcd.io/bbolt"
)

// Provider is an implementation of persistence.Provider that uses an existing
// open BoltDB database.
type Provider struct {
	// DB is the BoltDB database to use.
	DB *bbolt.DB
}

// Open opens the data store.
func (p *Provider) Open(ctx context.Context) (persistence.DataStore, error) {
	return &dataStore{
		db: p.DB,
		close: func(*bbolt.DB) error {
			// Don't actually close the database, since we didn't open it.
			return nil
		},
	}, nil
}

// FileProvider is an implementation of persistence.Provider that opens a
// BoltDB database file.
type FileProvider struct {
	// Path is the path to the BoltDB database to open or create.
	Path string

	// Mode is the file mode for the created file.
	// If it is zero, 0600 (owner read/write only) is used.
	Mode os.FileMode

	// Options is the BoltDB options for the database.
	// If it is nil, bbolt.DefaultOptions is used.
	Options *bbolt.Options
}

// Open opens the data store.
func (p *FileProvider) Open(ctx context.Context) (persistence.DataStore, error) {
	db, err := bboltx.Open(ctx, p.Path, p.Mode, p.Options)
	if err != nil {
		return nil, err
	}

	return &dataStore{
		db: db,
		close: func(db *bbolt.DB) error {
			return db.Close()
		},
	}, nil
}
