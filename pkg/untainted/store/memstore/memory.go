package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/amantheshaikh/untainted/pkg/untainted/prefs"
	"github.com/amantheshaikh/untainted/pkg/untainted/store"
)

// Store is an in-memory implementation of store.ProfileStore for tests
// and one-shot CLI runs.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]store.Profile
	now      func() time.Time
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		profiles: make(map[string]store.Profile),
		now:      time.Now,
	}
}

// Close implements store.ProfileStore.
func (s *Store) Close() error { return nil }

// Get returns a copy of the profile.
func (s *Store) Get(ctx context.Context, id string) (store.Profile, error) {
	id, err := store.NormalizeID(id)
	if err != nil {
		return store.Profile{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return store.Profile{}, store.NotFound(id)
	}
	return copyProfile(p), nil
}

// Put inserts or replaces a profile, keyed by id.
func (s *Store) Put(ctx context.Context, p store.Profile) error {
	id, err := store.NormalizeID(p.ID)
	if err != nil {
		return err
	}
	p.ID = id
	p.UpdatedAt = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[id] = copyProfile(p)
	return nil
}

// Delete removes a profile.
func (s *Store) Delete(ctx context.Context, id string) error {
	id, err := store.NormalizeID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[id]; !ok {
		return store.NotFound(id)
	}
	delete(s.profiles, id)
	return nil
}

// List returns every profile ordered by id.
func (s *Store) List(ctx context.Context) ([]store.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, copyProfile(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func copyProfile(p store.Profile) store.Profile {
	p.Preferences = prefs.Preferences{}.Merge(p.Preferences)
	return p
}
