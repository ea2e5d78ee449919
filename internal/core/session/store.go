// Package session provides the in-memory session store. Sessions are held
// per store instance and injected into their consumers; there is no
// process-wide current profile, so independent callers can hold independent
// authenticated sessions concurrently.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/sandia/users-manager/internal/core/domain"
	"github.com/sandia/users-manager/internal/core/ports"
)

const defaultTTL = 24 * time.Hour

// Store is a mutex-guarded in-memory ports.SessionStore. Suitable for a
// single-process deployment; the Redis-backed store covers everything else.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*ports.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates an empty Store. A non-positive ttl falls back to 24h.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{
		sessions: make(map[string]*ports.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a new session for the profile under a fresh random id.
func (s *Store) Create(_ context.Context, profile domain.Profile) (*ports.Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}

	now := s.now().UTC()
	session := &ports.Session{
		ID:        id,
		Profile:   profile,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	return session, nil
}

// Get returns the live session for id, or (nil, nil) when the id is unknown
// or the session has expired. Expired sessions are removed lazily.
func (s *Store) Get(_ context.Context, id string) (*ports.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if s.now().UTC().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, nil
	}

	return session, nil
}

// Delete ends the session with the given id.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
