// Package store persists screen documents. A Backend is a small key/value
// contract; Store layers JSON encoding and normalization on top of it, and
// Persister makes writes asynchronous so callers never wait on storage.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/warpdl/warpscreen/pkg/logger"
	"github.com/warpdl/warpscreen/pkg/schedule"
)

// DefaultKey is the key a screen document is stored under unless a session
// overrides it.
const DefaultKey = "viewerData_v2"

var (
	// ErrNotFound is returned by Backend.Get when the key has no value.
	ErrNotFound = errors.New("store: key not found")
	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("store: unknown driver")
)

// Backend is a key/value persistence backend.
type Backend interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Close releases the backend's resources.
	Close() error
}

// Store reads and writes one screen document through a Backend.
type Store struct {
	b   Backend
	key string
	log logger.Logger
}

// New returns a Store for key on b. An empty key selects DefaultKey; a nil
// logger discards messages.
func New(b Backend, key string, l logger.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Store{b: b, key: key, log: l}
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// Load returns the stored document, normalized. A missing document yields an
// empty one. A stored value that cannot be decoded is reported as a warning
// and also yields an empty document, so a corrupt cache never prevents the
// screen from starting.
func (s *Store) Load(ctx context.Context) (*schedule.Document, error) {
	doc := &schedule.Document{}
	raw, err := s.b.Get(ctx, s.key)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("store: load %s: %w", s.key, err)
	default:
		if err := json.Unmarshal(raw, doc); err != nil {
			s.log.Warning("Discarding undecodable document under %s: %v", s.key, err)
			doc = &schedule.Document{}
		}
	}
	schedule.Normalize(doc)
	return doc, nil
}

// Save encodes doc and writes it to the backend.
func (s *Store) Save(ctx context.Context, doc *schedule.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", s.key, err)
	}
	if err := s.b.Set(ctx, s.key, b); err != nil {
		return fmt.Errorf("store: save %s: %w", s.key, err)
	}
	return nil
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.b.Close()
}

// Driver names accepted by Open.
const (
	DriverDiskv  = "diskv"
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Open creates the backend named by driver. location is a directory for
// diskv and file, a database path for sqlite, and is ignored for memory.
func Open(driver, location string) (Backend, error) {
	switch driver {
	case DriverDiskv, "":
		return NewDiskv(location)
	case DriverSQLite:
		return NewSQLite(location)
	case DriverFile:
		return NewFile(nil, location)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
