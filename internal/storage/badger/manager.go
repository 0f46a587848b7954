package badger

import (
	"github.com/ternarybob/arbor"
)

// Manager owns the harness's badger connection and its document store, the
// single entry point EmbeddedServer opens and closes.
type Manager struct {
	db        *BadgerDB
	documents *DocumentStore
	logger    arbor.ILogger
}

// NewManager opens a badger store at path and wraps it with document
// bookkeeping. resetOnStartup wipes any prior store at path first.
func NewManager(logger arbor.ILogger, path string, resetOnStartup bool) (*Manager, error) {
	db, err := NewBadgerDB(logger, path, resetOnStartup)
	if err != nil {
		return nil, err
	}
	return &Manager{
		db:        db,
		documents: NewDocumentStore(db, logger),
		logger:    logger,
	}, nil
}

// Documents returns the document/commit/database store.
func (m *Manager) Documents() *DocumentStore {
	return m.documents
}

// Close closes the underlying badger connection.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
