// Package session provides the in-memory session store. Session state is
// working memory for one user between uploads and analysis; losing it on
// restart only means re-uploading, since completed analyses are persisted
// separately.
package session

import (
	"context"
	"sync"
	"time"

	"bidrecon/internal/domain"
)

type entry struct {
	state     *domain.SessionState
	expiresAt time.Time
}

// MemoryStore is a TTL-evicting in-memory implementation of port.SessionStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

// NewMemoryStore creates a store whose sessions expire ttl after their last
// update. A background sweeper reclaims expired entries every sweepInterval;
// pass 0 to disable sweeping (expired sessions are still rejected on read).
func NewMemoryStore(ttl, sweepInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go s.sweep(sweepInterval)
	}
	return s
}

// Close stops the background sweeper.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := s.now()
			s.mu.Lock()
			for id, e := range s.entries {
				if now.After(e.expiresAt) {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok || s.now().After(e.expiresAt) {
		return nil, domain.ErrSessionNotFound
	}
	return copyState(e.state), nil
}

func (s *MemoryStore) GetOrCreate(_ context.Context, id string) (*domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.freshEntry(id)
	return copyState(e.state), nil
}

func (s *MemoryStore) Update(_ context.Context, id string, fn func(*domain.SessionState)) (*domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.freshEntry(id)
	fn(e.state)
	e.state.UpdatedAt = s.now()
	e.expiresAt = s.now().Add(s.ttl)
	return copyState(e.state), nil
}

// Clear resets the session's working state in place. History lives in the
// analyses table and is unaffected.
func (s *MemoryStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || s.now().After(e.expiresAt) {
		return domain.ErrSessionNotFound
	}
	created := e.state.CreatedAt
	e.state = &domain.SessionState{
		ID:        id,
		CreatedAt: created,
		UpdatedAt: s.now(),
	}
	e.expiresAt = s.now().Add(s.ttl)
	return nil
}

// freshEntry returns the live entry for id, replacing expired or missing
// entries with a new empty session. Caller holds the write lock.
func (s *MemoryStore) freshEntry(id string) *entry {
	now := s.now()
	e, ok := s.entries[id]
	if !ok || now.After(e.expiresAt) {
		e = &entry{
			state: &domain.SessionState{
				ID:        id,
				CreatedAt: now,
				UpdatedAt: now,
			},
			expiresAt: now.Add(s.ttl),
		}
		s.entries[id] = e
	}
	return e
}

// copyState returns a shallow-safe copy so callers cannot mutate stored
// state outside Update.
func copyState(st *domain.SessionState) *domain.SessionState {
	out := *st
	out.RFPItems = append([]domain.LineItem(nil), st.RFPItems...)
	out.BidItems = append([]domain.LineItem(nil), st.BidItems...)
	out.PlanItems = append([]domain.LineItem(nil), st.PlanItems...)
	out.Documents = append([]domain.DocumentMeta(nil), st.Documents...)
	return &out
}
