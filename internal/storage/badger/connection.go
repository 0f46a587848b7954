package badger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// BadgerDB manages the Badger database connection backing the embedded test
// harness: one on-disk store per harness process, holding every
// database/branch/document/commit the fake server has been asked to keep.
type BadgerDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// NewBadgerDB opens (creating if necessary) a badgerhold store at path. If
// resetOnStartup is set, any existing store at path is wiped first, matching
// the harness's "fresh process, fresh state" expectation for test runs.
func NewBadgerDB(logger arbor.ILogger, path string, resetOnStartup bool) (*BadgerDB, error) {
	if resetOnStartup {
		if _, err := os.Stat(path); err == nil {
			logger.Debug().Str("path", path).Msg("deleting existing harness store (reset_on_startup=true)")
			if err := os.RemoveAll(path); err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("failed to delete harness store directory")
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create harness store directory: %w", err)
	}

	logger.Debug().Str("path", path).Msg("opening harness badger store")

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open harness badger store: %w", err)
	}

	logger.Debug().Str("path", path).Msg("harness badger store initialized")

	return &BadgerDB{store: store, logger: logger}, nil
}

// Store returns the underlying badgerhold store.
func (b *BadgerDB) Store() *badgerhold.Store {
	return b.store
}

// Close closes the database connection.
func (b *BadgerDB) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}
