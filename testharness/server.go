// Package testharness provides EmbeddedServer, a Badger-backed fake
// TerminusDB HTTP server that backs tests without a real server binary.
// It serves the database, document, WOQL, branch and log endpoints; other
// endpoint families (GraphQL, collaboration, remotes, users) are not routed
// and answer 404.
package testharness

import (
	"fmt"
	"net/http/httptest"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/terminusdb-labs/terminusdb-go/internal/common"
	"github.com/terminusdb-labs/terminusdb-go/internal/storage/badger"
)

// EmbeddedServer is an httptest.Server whose handler is backed by a
// badger/badgerhold store in an on-disk data directory. Each
// NewEmbeddedServer call starts a separate server that lives until Close;
// there is no shared process-wide instance.
type EmbeddedServer struct {
	httpServer *httptest.Server
	storage    *badger.Manager
	janitor    *cron.Cron
	ttl        time.Duration
	logger     arbor.ILogger
	dataDir    string
}

// Option configures an EmbeddedServer at construction time.
type Option func(*serverConfig)

type serverConfig struct {
	dataDir         string
	janitorSchedule string
	ttl             time.Duration
	logger          arbor.ILogger
}

// WithDataDir overrides the on-disk directory the badger store opens at.
// Defaults to a fresh temp directory, removed on Close.
func WithDataDir(dir string) Option { return func(c *serverConfig) { c.dataDir = dir } }

// WithJanitorSchedule overrides the cron expression the stale-database
// sweep runs on. Defaults to "@every 1m"; an empty schedule disables the janitor.
func WithJanitorSchedule(schedule string) Option {
	return func(c *serverConfig) { c.janitorSchedule = schedule }
}

// WithDatabaseTTL sets how long any database may live before the janitor
// considers it stale and deletes it. The package has no scoped
// temporary-database helper; the sweep covers every database in the store.
func WithDatabaseTTL(ttl time.Duration) Option { return func(c *serverConfig) { c.ttl = ttl } }

// WithLogger overrides the package-level logger fallback.
func WithLogger(logger arbor.ILogger) Option { return func(c *serverConfig) { c.logger = logger } }

// NewEmbeddedServer starts a fake TerminusDB server. Call Close when done;
// it stops the janitor, closes the badger store, and removes any temp
// directory this call created.
func NewEmbeddedServer(opts ...Option) (*EmbeddedServer, error) {
	cfg := serverConfig{
		janitorSchedule: "@every 1m",
		ttl:             30 * time.Minute,
		logger:          common.GetLogger(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ownedDir := cfg.dataDir == ""
	if ownedDir {
		dir, err := os.MkdirTemp("", "terminusdb-harness-*")
		if err != nil {
			return nil, fmt.Errorf("testharness: create temp data dir: %w", err)
		}
		cfg.dataDir = dir
	}

	storage, err := badger.NewManager(cfg.logger, cfg.dataDir, false)
	if err != nil {
		return nil, err
	}

	srv := &EmbeddedServer{storage: storage, ttl: cfg.ttl, logger: cfg.logger, dataDir: cfg.dataDir}
	if !ownedDir {
		srv.dataDir = ""
	}
	srv.httpServer = httptest.NewServer(srv.routes())

	if cfg.janitorSchedule != "" {
		if err := common.ValidateJanitorSchedule(cfg.janitorSchedule); err != nil {
			srv.Close()
			return nil, err
		}
		srv.janitor = cron.New()
		if _, err := srv.janitor.AddFunc(cfg.janitorSchedule, srv.sweepStaleDatabases); err != nil {
			srv.Close()
			return nil, fmt.Errorf("testharness: schedule janitor: %w", err)
		}
		srv.janitor.Start()
	}

	return srv, nil
}

// URL returns the base endpoint the client package should connect to.
func (s *EmbeddedServer) URL() string { return s.httpServer.URL }

// Close stops the janitor, the HTTP server, and the backing store.
func (s *EmbeddedServer) Close() {
	if s.janitor != nil {
		s.janitor.Stop()
	}
	s.httpServer.Close()
	_ = s.storage.Close()
	if s.dataDir != "" {
		_ = os.RemoveAll(s.dataDir)
	}
}

// sweepStaleDatabases deletes any database this harness created whose age
// exceeds ttl, a backstop for tests that panic before their own cleanup
// deletes the database.
func (s *EmbeddedServer) sweepStaleDatabases() {
	names, err := s.storage.Documents().ListDatabases()
	if err != nil {
		s.logger.Warn().Err(err).Msg("testharness: janitor failed to list databases")
		return
	}
	now := time.Now()
	for _, name := range names {
		created, ok := s.storage.Documents().CreationTime(name)
		if !ok || now.Sub(created) < s.ttl {
			continue
		}
		if err := s.storage.Documents().DeleteDatabase(name); err != nil {
			s.logger.Warn().Err(err).Str("database", name).Msg("testharness: janitor failed to delete stale database")
			continue
		}
		s.logger.Debug().Str("database", name).Msg("testharness: janitor deleted stale database")
	}
}
