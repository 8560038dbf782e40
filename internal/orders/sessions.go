package orders

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrNoDraft means the user has no open draft.
var ErrNoDraft = errors.New("no open draft")

// DraftStore holds at most one open draft per practitioner. Drafts are
// never persisted; a server restart discards them, which matches their
// ephemeral lifecycle.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]*Draft
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[uuid.UUID]*Draft)}
}

// Open starts a fresh draft for the user, replacing any existing one.
func (s *DraftStore) Open(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[userID] = NewDraft()
}

// Discard drops the user's draft, if any.
func (s *DraftStore) Discard(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, userID)
}

// Do runs fn against the user's open draft under the store lock.
func (s *DraftStore) Do(userID uuid.UUID, fn func(*Draft) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[userID]
	if !ok {
		return ErrNoDraft
	}
	return fn(d)
}
