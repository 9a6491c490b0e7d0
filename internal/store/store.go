// Package store owns the in-memory timesheet aggregate.
//
// All reads go through View and all writes through Mutate, so a read-modify-write
// sequence such as the weekly cap check followed by the insert is atomic.
package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
)

// Change describes the state produced by a successful mutation.
type Change struct {
	Version uint64
	Data    []byte
}

type Store struct {
	mu      sync.RWMutex
	data    *timesheet.Snapshot
	version uint64
}

func New() *Store {
	return &Store{data: timesheet.NewSnapshot()}
}

// Load replaces the aggregate. Keys are authoritative over the embedded email/id fields.
func (s *Store) Load(snap *timesheet.Snapshot) {
	normalized := timesheet.NewSnapshot()
	if snap != nil {
		for email, u := range snap.Users {
			u.Email = email
			normalized.Users[email] = u
		}
		for id, p := range snap.Projects {
			p.ID = id
			normalized.Projects[id] = p
		}
		for id, e := range snap.Entries {
			e.ID = id
			normalized.Entries[id] = e
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = normalized
	s.version = 0
}

// Decode loads a serialized aggregate. Empty input yields an empty store.
func (s *Store) Decode(data []byte) error {
	if len(data) == 0 {
		s.Load(nil)
		return nil
	}
	var snap timesheet.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	s.Load(&snap)
	return nil
}

// View runs fn under the read lock. fn must not retain or modify the snapshot.
func (s *Store) View(fn func(snap *timesheet.Snapshot)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

// Mutate runs fn under the write lock. fn must leave the snapshot untouched when it
// returns an error; on success the version is bumped and the new state serialized.
func (s *Store) Mutate(fn func(snap *timesheet.Snapshot) error) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.data); err != nil {
		return Change{}, err
	}

	s.version++
	data, err := json.Marshal(s.data)
	if err != nil {
		return Change{Version: s.version}, fmt.Errorf("encode snapshot: %w", err)
	}
	return Change{Version: s.version, Data: data}, nil
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns a copy that callers may keep.
func (s *Store) Snapshot() *timesheet.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := timesheet.NewSnapshot()
	for k, v := range s.data.Users {
		out.Users[k] = v
	}
	for k, v := range s.data.Projects {
		out.Projects[k] = v
	}
	for k, v := range s.data.Entries {
		out.Entries[k] = v
	}
	return out
}

// Entries flattens the entry map; order is unspecified.
func Entries(snap *timesheet.Snapshot) []timesheet.Entry {
	out := make([]timesheet.Entry, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		out = append(out, e)
	}
	return out
}
