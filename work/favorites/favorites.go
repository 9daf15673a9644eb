package favorites

import (
	"encoding/json"
	"errors"
	"sync"

	"iptv-player/work/logger"
	"iptv-player/work/metrics"
	"iptv-player/work/storage"
)

// storageKey is the single key under which the serialized identifier list
// lives in the backing store.
const storageKey = "favoriteChannels"

// Store is a persisted set of channel identifiers. Membership order follows
// insertion order, duplicates are impossible, and every mutation is written
// through to the backing store synchronously. The store has no idea which
// identifiers still name live channels; stale entries are harmless.
type Store struct {
	mu      sync.RWMutex
	ids     []string
	backing storage.Store
}

// New builds a Store rehydrated from the backing store. A missing key means
// a fresh start; corrupt content is logged and treated as empty, never
// surfaced to the caller.
func New(backing storage.Store) *Store {
	s := &Store{
		backing: backing,
	}

	raw, err := backing.Get(storageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("{favorites - New} failed to read persisted favorites: %v", err)
		}
		metrics.FavoritesCount.Set(0)
		return s
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		logger.Warn("{favorites - New} corrupt favorites payload, starting empty: %v", err)
		metrics.FavoritesCount.Set(0)
		return s
	}

	// drop any duplicates a hand-edited payload might carry
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		s.ids = append(s.ids, id)
	}

	metrics.FavoritesCount.Set(float64(len(s.ids)))
	return s
}

// List returns the identifiers in insertion order.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Has reports membership of id.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// Count returns the number of favorites.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Add inserts id if absent. Adding an existing id is a no-op, so Add is
// idempotent.
func (s *Store) Add(id string) {
	if id == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) >= 0 {
		return
	}

	s.ids = append(s.ids, id)
	s.persistLocked()
}

// Remove drops id if present.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}

	s.ids = append(s.ids[:i], s.ids[i+1:]...)
	s.persistLocked()
}

// Toggle adds id if absent, removes it otherwise, and reports the resulting
// membership state.
func (s *Store) Toggle(id string) bool {
	if id == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.ids = append(s.ids[:i], s.ids[i+1:]...)
		s.persistLocked()
		return false
	}

	s.ids = append(s.ids, id)
	s.persistLocked()
	return true
}

// Clear removes every favorite.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = nil
	s.persistLocked()
}

// indexOf returns the position of id or -1. Callers must hold s.mu.
func (s *Store) indexOf(id string) int {
	for i, existing := range s.ids {
		if existing == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the current list through to the backing store.
// Callers must hold s.mu. Persistence failures are logged, not raised:
// the in-memory set stays authoritative for the session.
func (s *Store) persistLocked() {
	raw, err := json.Marshal(s.ids)
	if err != nil {
		logger.Error("{favorites - persist} failed to serialize favorites: %v", err)
		return
	}

	if err := s.backing.Set(storageKey, string(raw)); err != nil {
		logger.Error("{favorites - persist} failed to persist favorites: %v", err)
	}

	metrics.FavoritesCount.Set(float64(len(s.ids)))
}
