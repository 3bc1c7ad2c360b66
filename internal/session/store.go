package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/caked-with-love/internal/observability"
)

// sweepEvery is the number of store operations between idle sweeps.
const sweepEvery = 1000

// Store is a process-local registry of sessions keyed by ID. Idle sessions
// are evicted after ttl by an opportunistic sweep run on access, the same
// way the rate limiter drops idle buckets. A session awaiting a reply is
// never evicted.
//
// Store is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	ops      int
	now      func() time.Time
}

// NewStore returns an empty Store. A ttl <= 0 disables eviction.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers and returns a new empty session with a random UUID.
func (st *Store) Create() *Session {
	now := st.now().UTC()
	s := New(uuid.NewString(), now)

	st.mu.Lock()
	st.sweepLocked(now)
	st.sessions[s.ID] = s
	observability.ChatSessionsActive.Set(float64(len(st.sessions)))
	st.mu.Unlock()
	return s
}

// Get returns the session with id and refreshes its idle timer.
func (st *Store) Get(id string) (*Session, bool) {
	now := st.now().UTC()

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sweepLocked(now)
	s, ok := st.sessions[id]
	if ok {
		s.lastSeen = now
	}
	return s, ok
}

// Delete removes the session with id, reporting whether it existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	observability.ChatSessionsActive.Set(float64(len(st.sessions)))
	return ok
}

// Len returns the number of sessions held.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// sweepLocked evicts idle sessions every sweepEvery operations.
// st.mu must be held.
func (st *Store) sweepLocked(now time.Time) {
	st.ops++
	if st.ttl <= 0 || st.ops < sweepEvery {
		return
	}
	st.ops = 0
	for id, s := range st.sessions {
		if now.Sub(s.lastSeen) >= st.ttl && s.State() == Idle {
			delete(st.sessions, id)
		}
	}
	observability.ChatSessionsActive.Set(float64(len(st.sessions)))
}
