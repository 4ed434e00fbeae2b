package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	data      []byte
	timestamp time.Time
	seq       uint64 // breaks timestamp ties in write order
}

// MemoryStore is the in-process Store. One mutex guards the whole map, so
// eviction and insertion happen as a single step.
type MemoryStore struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	seq     uint64
}

// MemoryOption customizes a MemoryStore
type MemoryOption func(*MemoryStore)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates an in-process store
func NewMemoryStore(cfg Config, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		cfg:     cfg,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Lookup(_ context.Context, query string, count int) ([]byte, bool) {
	if !s.cfg.active() {
		return nil, false
	}
	key := Key(query, count)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.timestamp) > s.cfg.TTL {
		delete(s.entries, key)
		return nil, false
	}
	return e.data, true
}

func (s *MemoryStore) Store(_ context.Context, query string, count int, data []byte) error {
	if !s.cfg.active() {
		return nil
	}
	key := Key(query, count)
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.cfg.MaxSize {
		s.evictOldest()
	}
	s.seq++
	s.entries[key] = &entry{data: buf, timestamp: s.now(), seq: s.seq}
	return nil
}

// evictOldest drops the entry with the smallest timestamp. Caller holds mu.
func (s *MemoryStore) evictOldest() {
	var (
		oldestKey string
		oldest    *entry
	)
	for k, e := range s.entries {
		if oldest == nil || e.timestamp.Before(oldest.timestamp) ||
			(e.timestamp.Equal(oldest.timestamp) && e.seq < oldest.seq) {
			oldestKey, oldest = k, e
		}
	}
	if oldest != nil {
		delete(s.entries, oldestKey)
	}
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]*entry)
	s.mu.Unlock()
	return nil
}

// Stats counts live entries only; expired ones stay in the map until looked up.
func (s *MemoryStore) Stats(context.Context) Stats {
	s.mu.Lock()
	now := s.now()
	n := 0
	for _, e := range s.entries {
		if now.Sub(e.timestamp) <= s.cfg.TTL {
			n++
		}
	}
	s.mu.Unlock()
	return s.cfg.stats(BackendMemory, n)
}
