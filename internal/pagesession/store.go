// Package pagesession keeps one add-on selection per loaded pricing page.
package pagesession

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/haikalarif/portofolio-freelance/internal/order"
)

const (
	// DefaultTTL bounds how long an idle page keeps its selection.
	DefaultTTL = 2 * time.Hour
	// DefaultMaxSessions caps live sessions; the least recently seen is evicted beyond it.
	DefaultMaxSessions = 10000
)

// ErrUnknownSession is returned for ids that were never issued or have expired.
var ErrUnknownSession = errors.New("pagesession: unknown session")

// Session owns the registry of one page load. Intents run one at a time.
type Session struct {
	id       string
	mu       sync.Mutex
	registry *order.Registry
	lastSeen time.Time
}

// ID returns the session id embedded in the page.
func (s *Session) ID() string { return s.id }

// Do runs fn with exclusive access to the session registry.
func (s *Session) Do(fn func(*order.Registry) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.registry)
}

// Snapshot returns the current entries.
func (s *Session) Snapshot() []order.AddonEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Entries()
}

// Store is an in-memory session store with idle expiry.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
	now      func() time.Time
	newID    func() string
}

// Option customises a Store.
type Option func(*Store)

// WithTTL sets the idle lifetime of a session.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxSessions caps the number of live sessions. Zero or less keeps the default.
func WithMaxSessions(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.max = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewStore constructs an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      DefaultTTL,
		max:      DefaultMaxSessions,
		now:      time.Now,
		newID:    func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a session owning a fresh registry built from decls. A full store first drops
// expired sessions, then the least recently seen ones.
func (s *Store) Open(decls []order.AddonDecl) *Session {
	now := s.now().UTC()
	sess := &Session{
		id:       s.newID(),
		registry: order.NewRegistry(decls),
		lastSeen: now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) >= s.max {
		s.removeExpiredLocked(now)
	}
	for len(s.sessions) >= s.max {
		s.evictOldestLocked()
	}
	s.sessions[sess.id] = sess
	return sess
}

func (s *Store) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID, oldest = id, sess.lastSeen
		}
	}
	delete(s.sessions, oldestID)
}

// Get returns a live session and marks it as seen.
func (s *Store) Get(id string) (*Session, error) {
	now := s.now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	if !now.Before(sess.lastSeen.Add(s.ttl)) {
		delete(s.sessions, id)
		return nil, ErrUnknownSession
	}
	sess.lastSeen = now
	return sess, nil
}

// Len reports the number of stored sessions, expired ones included until cleanup.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CleanupExpired removes sessions idle for longer than the TTL.
func (s *Store) CleanupExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeExpiredLocked(now.UTC())
}

func (s *Store) removeExpiredLocked(now time.Time) int {
	removed := 0
	for id, sess := range s.sessions {
		if now.Before(sess.lastSeen.Add(s.ttl)) {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	return removed
}

// Run evicts expired sessions every interval until ctx is done. onSweep, when set, receives
// the number removed and the number remaining after each sweep.
func (s *Store) Run(ctx context.Context, interval time.Duration, onSweep func(removed, remaining int)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			removed := s.CleanupExpired(s.now())
			if onSweep != nil {
				onSweep(removed, s.Len())
			}
		case <-ctx.Done():
			return
		}
	}
}
