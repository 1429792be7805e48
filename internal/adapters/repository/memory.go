package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/okian/hireflow/internal/domain/model"
	"github.com/okian/hireflow/pkg/metrics"
)

type memoryEntry struct {
	c       model.Candidate
	expires time.Time
}

// MemoryStore is an in-process Store. Expired entries are dropped lazily.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	opts    options
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{entries: make(map[string]memoryEntry), opts: o}
}

func (s *MemoryStore) expired(e memoryEntry, now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Candidate, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok || s.expired(e, s.opts.now()) {
		return model.Candidate{}, ErrNotFound
	}
	return cloneCandidate(e.c), nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, c model.Candidate) error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrInvalidID
	}
	e := memoryEntry{c: cloneCandidate(c)}
	if s.opts.ttl > 0 {
		e.expires = s.opts.now().Add(s.opts.ttl)
	}

	s.mu.Lock()
	s.entries[c.ID] = e
	n := s.sweepLocked()
	s.mu.Unlock()

	metrics.UpdateSessionCandidates(n)
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	n := s.sweepLocked()
	s.mu.Unlock()

	metrics.UpdateSessionCandidates(n)
	return nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(), nil
}

// sweepLocked drops expired entries and returns how many remain. Must be
// called with s.mu held for writing.
func (s *MemoryStore) sweepLocked() int {
	if s.opts.ttl > 0 {
		now := s.opts.now()
		for id, e := range s.entries {
			if s.expired(e, now) {
				delete(s.entries, id)
			}
		}
	}
	return len(s.entries)
}

// cloneCandidate copies c so callers never share the Interview pointer with
// the store.
func cloneCandidate(c model.Candidate) model.Candidate {
	if c.Interview != nil {
		iv := *c.Interview
		c.Interview = &iv
	}
	return c
}
