package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const stateTTL = 10 * time.Minute

type pendingState struct {
	userID      string
	redirectURI string
	expiresAt   time.Time
}

// stateStore holds server-issued opaque OAuth state tokens for pending
// handshakes. A token is single-use: Consume removes it. Entries are
// in-memory only; an interrupted flow simply expires.
type stateStore struct {
	mu      sync.Mutex
	pending map[string]pendingState
}

func newStateStore() *stateStore {
	return &stateStore{
		pending: make(map[string]pendingState),
	}
}

func (s *stateStore) Issue(userID, redirectURI string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	state := uuid.New().String()
	s.pending[state] = pendingState{
		userID:      userID,
		redirectURI: redirectURI,
		expiresAt:   time.Now().Add(stateTTL),
	}
	return state
}

// Consume verifies the token belongs to userID and removes it.
func (s *stateStore) Consume(state, userID string) (pendingState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.pending[state]
	if !ok {
		return pendingState{}, false
	}
	delete(s.pending, state)

	if entry.userID != userID || time.Now().After(entry.expiresAt) {
		return pendingState{}, false
	}
	return entry, true
}

func (s *stateStore) pruneLocked() {
	now := time.Now()
	for state, entry := range s.pending {
		if now.After(entry.expiresAt) {
			delete(s.pending, state)
		}
	}
}
