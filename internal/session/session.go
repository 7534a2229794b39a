// Package session keeps per-identity conversation buffers in process memory.
// Buffers are bounded: once a buffer exceeds the limit the oldest messages
// are dropped, so requests stay within a predictable payload size.
package session

import (
	"sync"

	"companion-bot/internal/models"
)

// DefaultLimit is the maximum number of messages kept per identity.
const DefaultLimit = 20

// Store maps an identity to its ordered conversation buffer. Create-on-miss:
// unknown identities yield an empty buffer, never an error. All methods are
// safe for concurrent use, so same-identity updates from different goroutines
// serialize at the store.
type Store struct {
	mu      sync.Mutex
	limit   int
	buffers map[string][]models.Message
}

// NewStore creates a store. A non-positive limit falls back to DefaultLimit.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		limit:   limit,
		buffers: make(map[string][]models.Message),
	}
}

// GetOrCreate returns a copy of the identity's buffer, creating an empty one
// on first sight.
func (s *Store) GetOrCreate(identity string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, ok := s.buffers[identity]
	if !ok {
		s.buffers[identity] = nil
		return []models.Message{}
	}
	out := make([]models.Message, len(buf))
	copy(out, buf)
	return out
}

// Append adds a message to the identity's buffer and enforces the cap by
// dropping from the front.
func (s *Store) Append(identity string, msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := append(s.buffers[identity], msg)
	if len(buf) > s.limit {
		buf = buf[len(buf)-s.limit:]
	}
	s.buffers[identity] = buf
}

// Clear resets the identity's buffer to an empty sequence. Clearing an unseen
// identity is a no-op that still leaves it empty afterwards.
func (s *Store) Clear(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffers[identity] = nil
}

// Len reports the current buffer length for an identity.
func (s *Store) Len(identity string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffers[identity])
}
