package badger

import (
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// DatabaseRecord tracks one harness-created database. badgerhold indexes
// records by Go struct field via reflection, so this and the records
// below are plain structs rather than raw JSON blobs.
type DatabaseRecord struct {
	Name      string `badgerholdKey:"Name"`
	Label     string
	Comment   string
	CreatedAt time.Time
}

// DocumentRecord is one stored document body, keyed by database/branch/id so
// the same id can exist independently on two branches.
type DocumentRecord struct {
	Key     string `badgerholdKey:"Key"` // "<db>\x00<branch>\x00<id>"
	DB      string `badgerholdIndex:"DB"`
	Branch  string
	ID      string
	Class   string
	Body    map[string]interface{}
	Updated time.Time
}

// CommitRecord is one append-only commit log entry for a database/branch
// pair, backing Log/commitLogFor and list_instance_versions.
type CommitRecord struct {
	Key        string `badgerholdKey:"Key"`
	DB         string `badgerholdIndex:"DB"`
	Branch     string
	Identifier string
	Author     string
	Message    string
	Timestamp  time.Time
	Seq        int64
}

func documentKey(db, branch, id string) string {
	return db + "\x00" + branch + "\x00" + id
}

// DocumentStore implements the document/commit/database bookkeeping the
// embedded fake server needs, backed by a badgerhold store.
type DocumentStore struct {
	db     *BadgerDB
	logger arbor.ILogger
	seq    int64
}

// NewDocumentStore wraps db with the harness's document bookkeeping.
func NewDocumentStore(db *BadgerDB, logger arbor.ILogger) *DocumentStore {
	return &DocumentStore{db: db, logger: logger}
}

// CreateDatabase registers name, failing if it already exists.
func (s *DocumentStore) CreateDatabase(name, label, comment string) error {
	if s.DatabaseExists(name) {
		return fmt.Errorf("database already exists: %s", name)
	}
	rec := DatabaseRecord{Name: name, Label: label, Comment: comment, CreatedAt: time.Now()}
	if err := s.db.Store().Insert(name, &rec); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	return nil
}

// DatabaseExists reports whether name has been created.
func (s *DocumentStore) DatabaseExists(name string) bool {
	var rec DatabaseRecord
	err := s.db.Store().Get(name, &rec)
	return err == nil
}

// DeleteDatabase removes name and every document/commit recorded under it.
func (s *DocumentStore) DeleteDatabase(name string) error {
	if err := s.db.Store().Delete(name, &DatabaseRecord{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete database: %w", err)
	}
	if err := s.db.Store().DeleteMatching(&DocumentRecord{}, badgerhold.Where("DB").Eq(name)); err != nil {
		return fmt.Errorf("failed to delete database documents: %w", err)
	}
	if err := s.db.Store().DeleteMatching(&CommitRecord{}, badgerhold.Where("DB").Eq(name)); err != nil {
		return fmt.Errorf("failed to delete database commits: %w", err)
	}
	return nil
}

// ListDatabases returns every created database name, sorted.
func (s *DocumentStore) ListDatabases() ([]string, error) {
	var recs []DatabaseRecord
	if err := s.db.Store().Find(&recs, nil); err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	sort.Strings(names)
	return names, nil
}

// CreationTime reports when db was created, for the janitor's TTL sweep.
func (s *DocumentStore) CreationTime(name string) (time.Time, bool) {
	var rec DatabaseRecord
	if err := s.db.Store().Get(name, &rec); err != nil {
		return time.Time{}, false
	}
	return rec.CreatedAt, true
}

// PutDocument inserts or overwrites id's body on db/branch.
func (s *DocumentStore) PutDocument(db, branch, id, class string, body map[string]interface{}) error {
	rec := DocumentRecord{Key: documentKey(db, branch, id), DB: db, Branch: branch, ID: id, Class: class, Body: body, Updated: time.Now()}
	if err := s.db.Store().Upsert(rec.Key, &rec); err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

// GetDocument fetches id's body on db/branch.
func (s *DocumentStore) GetDocument(db, branch, id string) (map[string]interface{}, bool, error) {
	var rec DocumentRecord
	if err := s.db.Store().Get(documentKey(db, branch, id), &rec); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get document: %w", err)
	}
	return rec.Body, true, nil
}

// DeleteDocument removes id from db/branch.
func (s *DocumentStore) DeleteDocument(db, branch, id string) error {
	if err := s.db.Store().Delete(documentKey(db, branch, id), &DocumentRecord{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// ListDocuments returns every document body stored on db/branch, optionally
// restricted to class (empty matches every class).
func (s *DocumentStore) ListDocuments(db, branch, class string) ([]map[string]interface{}, error) {
	query := badgerhold.Where("DB").Eq(db).And("Branch").Eq(branch)
	var recs []DocumentRecord
	if err := s.db.Store().Find(&recs, query); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	out := make([]map[string]interface{}, 0, len(recs))
	for _, r := range recs {
		if class != "" && r.Class != class {
			continue
		}
		out = append(out, r.Body)
	}
	return out, nil
}

// AppendCommit records one commit log entry for db/branch, most-recent-last
// on disk (ListCommits reverses it to most-recent-first).
func (s *DocumentStore) AppendCommit(db, branch, identifier, author, message string) error {
	s.seq++
	rec := CommitRecord{
		Key: fmt.Sprintf("%s\x00%s\x00%020d", db, branch, s.seq),
		DB: db, Branch: branch, Identifier: identifier,
		Author: author, Message: message, Timestamp: time.Now(), Seq: s.seq,
	}
	if err := s.db.Store().Insert(rec.Key, &rec); err != nil {
		return fmt.Errorf("failed to append commit: %w", err)
	}
	return nil
}

// ListCommits returns db/branch's commit log, most recent first.
func (s *DocumentStore) ListCommits(db, branch string) ([]CommitRecord, error) {
	query := badgerhold.Where("DB").Eq(db).And("Branch").Eq(branch).SortBy("Seq").Reverse()
	var recs []CommitRecord
	if err := s.db.Store().Find(&recs, query); err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	return recs, nil
}

// CopyBranch forks every document and commit recorded under from onto to,
// the harness's stand-in for TerminusDB's copy-on-branch semantics. An
// empty from leaves to with no documents, matching branching off nothing.
func (s *DocumentStore) CopyBranch(db, from, to string) error {
	if from == "" {
		return nil
	}
	docs, err := s.ListDocuments(db, from, "")
	if err != nil {
		return err
	}
	for _, doc := range docs {
		id, _ := doc["@id"].(string)
		class, _ := doc["@type"].(string)
		if err := s.PutDocument(db, to, id, class, doc); err != nil {
			return err
		}
	}
	commits, err := s.ListCommits(db, from)
	if err != nil {
		return err
	}
	for i := len(commits) - 1; i >= 0; i-- {
		c := commits[i]
		if err := s.AppendCommit(db, to, c.Identifier, c.Author, c.Message); err != nil {
			return err
		}
	}
	return nil
}

// DeleteBranch removes every document and commit recorded under db/branch.
func (s *DocumentStore) DeleteBranch(db, branch string) error {
	if err := s.db.Store().DeleteMatching(&DocumentRecord{}, badgerhold.Where("DB").Eq(db).And("Branch").Eq(branch)); err != nil {
		return fmt.Errorf("failed to delete branch documents: %w", err)
	}
	if err := s.db.Store().DeleteMatching(&CommitRecord{}, badgerhold.Where("DB").Eq(db).And("Branch").Eq(branch)); err != nil {
		return fmt.Errorf("failed to delete branch commits: %w", err)
	}
	return nil
}
