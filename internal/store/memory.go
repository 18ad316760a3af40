package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-assistant/internal/assistant"
)

var (
	// ErrNotFound is returned when no session exists for a given ID.
	ErrNotFound = errors.New("chat session not found")
)

// SessionStore is a concurrency-safe in-memory registry of chat sessions.
type SessionStore struct {
	mu sync.RWMutex

	// key: session ID
	data map[string]*assistant.Session

	// retention configuration
	maxSessions int           // max number of live sessions
	maxAge      time.Duration // idle time after which a session is pruned

	now func() time.Time
}

// NewSessionStore creates a new SessionStore with optional limits.
// If maxSessions or maxAge is <= 0, that limit is not enforced.
func NewSessionStore(maxSessions int, maxAge time.Duration) *SessionStore {
	return &SessionStore{
		data:        make(map[string]*assistant.Session),
		maxSessions: maxSessions,
		maxAge:      maxAge,
		now:         time.Now,
	}
}

// Save registers a session and enforces retention by count, evicting the
// least recently active sessions first.
func (s *SessionStore) Save(session *assistant.Session) {
	s.mu.Lock()
	s.data[session.ID()] = session

	var evicted []*assistant.Session
	if s.maxSessions > 0 && len(s.data) > s.maxSessions {
		all := make([]*assistant.Session, 0, len(s.data))
		for _, sess := range s.data {
			if sess != session {
				all = append(all, sess)
			}
		}
		sort.Slice(all, func(i, j int) bool {
			return all[i].LastActive().Before(all[j].LastActive())
		})
		over := len(s.data) - s.maxSessions
		for _, sess := range all[:over] {
			delete(s.data, sess.ID())
			evicted = append(evicted, sess)
		}
	}
	s.mu.Unlock()

	// Closing waits for in-flight replies, so it happens outside the lock.
	for _, sess := range evicted {
		sess.Close()
	}
}

// Get returns the session with id.
func (s *SessionStore) Get(id string) (*assistant.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	return session, nil
}

// Delete removes and closes the session with id.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	session, ok := s.data[id]
	delete(s.data, id)
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	session.Close()
	return nil
}

// Prune closes and removes sessions idle for longer than maxAge and returns
// how many were removed.
func (s *SessionStore) Prune() int {
	if s.maxAge <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.maxAge)

	s.mu.Lock()
	var stale []*assistant.Session
	for id, session := range s.data {
		if session.LastActive().Before(cutoff) {
			delete(s.data, id)
			stale = append(stale, session)
		}
	}
	s.mu.Unlock()

	for _, session := range stale {
		session.Close()
	}
	return len(stale)
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Close closes every session and empties the store.
func (s *SessionStore) Close() {
	s.mu.Lock()
	all := s.data
	s.data = make(map[string]*assistant.Session)
	s.mu.Unlock()

	for _, session := range all {
		session.Close()
	}
}
