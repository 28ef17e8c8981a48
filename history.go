package friendbot

import (
	"sync"
)

// ConversationStore defines the interface for per-conversation turn storage.
type ConversationStore interface {
	// Append adds a turn to a conversation, creating the conversation on
	// first use and evicting the oldest turns once the retention bound is
	// exceeded.
	Append(conversationID string, turn Turn)

	// Turns returns a copy of the retained turns in insertion order.
	Turns(conversationID string) []Turn

	// Len reports the number of retained turns.
	Len(conversationID string) int
}

// MemoryStore is an in-memory implementation of ConversationStore. Each
// conversation keeps at most 2×maxTurns turns (one requester and one
// responder turn per logical exchange); older turns are dropped oldest-first.
//
// History is ephemeral and does not survive a process restart.
type MemoryStore struct {
	conversations map[string][]Turn
	maxTurns      int
	mu            sync.RWMutex
}

// NewMemoryStore creates a new MemoryStore retaining up to maxTurns logical
// exchanges per conversation.
func NewMemoryStore(maxTurns int) *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string][]Turn),
		maxTurns:      maxTurns,
	}
}

// Append adds a turn to the conversation, creating it lazily. When the
// retained length exceeds 2×maxTurns the oldest turns are evicted, preserving
// the relative order of the remainder.
func (s *MemoryStore) Append(conversationID string, turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.conversations[conversationID], turn)
	if limit := s.maxTurns * 2; len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	s.conversations[conversationID] = turns
}

// Turns returns a copy of the retained turns for the conversation in
// insertion order. An unknown conversation yields an empty slice, not an
// error.
func (s *MemoryStore) Turns(conversationID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := make([]Turn, len(s.conversations[conversationID]))
	copy(turns, s.conversations[conversationID])
	return turns
}

// Len reports the number of turns currently retained for the conversation.
func (s *MemoryStore) Len(conversationID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.conversations[conversationID])
}
