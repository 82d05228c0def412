// Package memsession implements an in-process session store.
package memsession

import (
	"sync"

	"github.com/google/uuid"
)

// Store maps opaque session identifiers to user identifiers. Sessions do not
// survive a restart, matching the demo scope.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]string
}

// NewStore initializes an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]string)}
}

// Open creates a session for a user and returns its identifier.
func (s *Store) Open(userID string) string {
	sessionID := uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = userID
	return sessionID
}

// Resolve returns the user identifier bound to a session.
func (s *Store) Resolve(sessionID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.sessions[sessionID]
	return userID, ok
}

// Close invalidates a session.
func (s *Store) Close(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
