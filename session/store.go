package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nucares/booking-gateway/flow"
)

// DefaultTTL is how long an untouched flow session survives.
const DefaultTTL = 30 * time.Minute

type record struct {
	flow     *flow.Flow
	userID   uint
	lastSeen time.Time
}

// Store keeps live booking flows in memory, keyed by an opaque session id.
// Each flow belongs to the user that started it; lookups by anyone else miss.
type Store struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	flows map[string]*record
}

// NewStore creates a store with the given idle TTL (DefaultTTL when zero).
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:   ttl,
		now:   time.Now,
		flows: make(map[string]*record),
	}
}

// Put registers a flow for the given user and returns its session id.
func (s *Store) Put(userID uint, f *flow.Flow) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[id] = &record{flow: f, userID: userID, lastSeen: s.now()}
	return id
}

// Get looks up a flow by id and owner, refreshing its idle timer on hit.
func (s *Store) Get(id string, userID uint) (*flow.Flow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.flows[id]
	if !ok || rec.userID != userID {
		return nil, false
	}
	if s.now().Sub(rec.lastSeen) > s.ttl {
		delete(s.flows, id)
		return nil, false
	}
	rec.lastSeen = s.now()
	return rec.flow, true
}

// Delete drops a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, id)
}

// Sweep removes idle sessions and reports how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	dropped := 0
	for id, rec := range s.flows {
		if rec.lastSeen.Before(cutoff) {
			delete(s.flows, id)
			dropped++
		}
	}
	return dropped
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flows)
}
