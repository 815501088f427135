// Package nameserver implements the name server's metadata store, client
// session table, and the wire-level operations it answers: view, info,
// create, delete, access grants, and the locator calls that hand reads,
// writes, streams, and undos off to a storage server.
package nameserver

import (
	"fmt"
	"sync"
	"time"

	"github.com/arvindsh/dfscore/internal/metadata"
	"github.com/arvindsh/dfscore/internal/metadata/checkpoint"
	"github.com/arvindsh/dfscore/internal/registry"
)

// ErrNotFound is returned when a filename has no record.
var ErrNotFound = fmt.Errorf("file not found")

// ErrExists is returned by Create when the filename is already taken.
var ErrExists = fmt.Errorf("file already exists")

// Store is the authoritative filename -> FileRecord map, the LRU hot-set
// index over it, the SS registry, and the checkpoint path. All public
// methods acquire mu for their full critical section; callers that need
// to make an outbound call to an SS release the lock first and
// reconcile state after re-acquiring it.
type Store struct {
	mu             sync.Mutex
	records        map[string]*metadata.Record
	lru            *lruCache
	registry       *registry.Registry
	checkpointPath string
}

// NewStore creates an empty store backed by reg, with an LRU of the
// given capacity and checkpoints written to checkpointPath (empty string
// disables persistence, used in tests).
func NewStore(reg *registry.Registry, lruSize int, checkpointPath string) *Store {
	return &Store{
		records:        make(map[string]*metadata.Record),
		lru:            newLRUCache(lruSize),
		registry:       reg,
		checkpointPath: checkpointPath,
	}
}

// LoadCheckpoint replays the checkpoint file into the store. Call once at
// startup before accepting connections.
func (s *Store) LoadCheckpoint() error {
	if s.checkpointPath == "" {
		return nil
	}
	records, err := checkpoint.Load(s.checkpointPath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records[r.Filename] = r
	}
	return nil
}

// persistLocked writes the full store to the checkpoint file. Called with
// mu held, after every mutation, per the specified checkpoint-on-every-
// mutation model. A write failure is returned to the caller, who is
// expected to log it — persistence failures do not unwind the in-memory
// mutation already applied.
func (s *Store) persistLocked() error {
	if s.checkpointPath == "" {
		return nil
	}
	records := make([]*metadata.Record, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	return checkpoint.Save(s.checkpointPath, records)
}

// find returns the stored record for filename (not a clone), consulting
// the LRU first. A miss falls through to the primary map and caches the
// result; a hit is returned without re-checking the map.
func (s *Store) find(filename string) (*metadata.Record, bool) {
	if r, ok := s.lru.Get(filename); ok {
		return r, true
	}
	r, ok := s.records[filename]
	if !ok {
		return nil, false
	}
	s.lru.Put(filename, r)
	return r, true
}

// Info returns a clone of filename's record, or ErrNotFound.
func (s *Store) Info(filename string) (*metadata.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.find(filename)
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

// UpdateStats overwrites filename's cached word/char counts and bumps
// LastAccessed, used by the INFO stat-refresh path. A miss is silently
// ignored — the record may have been deleted concurrently with the
// refresh call that is running lock-released.
func (s *Store) UpdateStats(filename string, wordCount, charCount int32, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.find(filename)
	if !ok {
		return
	}
	r.WordCount = wordCount
	r.CharCount = charCount
	r.LastAccessed = now
	s.lru.Put(filename, r)
	_ = s.persistLocked()
}

// Create registers a new record owned by owner, assigned to ssIndex.
// Returns ErrExists if filename is already taken.
func (s *Store) Create(filename, owner string, ssIndex int32, now time.Time) (*metadata.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[filename]; ok {
		return nil, ErrExists
	}
	r := metadata.NewRecord(filename, owner, ssIndex, now)
	s.records[filename] = r
	s.lru.Put(filename, r)
	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

// RegisterUnknown materializes a record for filename discovered during SS
// registration inventory, with owner "system". A no-op if filename is
// already known.
func (s *Store) RegisterUnknown(filename string, ssIndex int32, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[filename]; ok {
		return
	}
	r := metadata.NewRecord(filename, "system", ssIndex, now)
	s.records[filename] = r
	_ = s.persistLocked()
}

// Delete removes filename's record. Returns ErrNotFound if absent. The
// caller is responsible for forwarding the unlink to the owning SS before
// calling Delete, and for authorization checks.
func (s *Store) Delete(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[filename]; !ok {
		return ErrNotFound
	}
	delete(s.records, filename)
	s.lru.Delete(filename)
	return s.persistLocked()
}

// Grant upserts target's access rights on filename.
func (s *Store) Grant(filename, target string, rights metadata.Rights) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.find(filename)
	if !ok {
		return ErrNotFound
	}
	r.Grant(target, rights)
	s.lru.Put(filename, r)
	return s.persistLocked()
}

// Revoke removes target's access-list entry on filename.
func (s *Store) Revoke(filename, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.find(filename)
	if !ok {
		return ErrNotFound
	}
	r.Revoke(target)
	s.lru.Put(filename, r)
	return s.persistLocked()
}

// All returns a snapshot clone of every record, for VIEW and LIST_USERS.
func (s *Store) All() []*metadata.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*metadata.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Clone())
	}
	return out
}

// Registry exposes the underlying SS registry for locator operations.
func (s *Store) Registry() *registry.Registry {
	return s.registry
}
