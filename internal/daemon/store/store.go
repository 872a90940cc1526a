// Package store holds conversation content in memory for the daemon.
package store

import (
	"fmt"
	"sync"
)

// Store maps conversation IDs to their serialized content. All access
// goes through the mutex, so concurrent saves and reads never interleave
// partially. Contents live only as long as the daemon process.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]string // keyed by conversation ID
}

// New creates an empty conversation store.
func New() *Store {
	return &Store{
		conversations: make(map[string]string),
	}
}

// Save stores content under the given conversation ID, replacing any
// previous content for that ID.
func (s *Store) Save(id, content string) error {
	if id == "" {
		return fmt.Errorf("conversation id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[id] = content
	return nil
}

// Snapshot returns a copy of every stored conversation. The copy is
// taken under the read lock, so it reflects a single consistent point
// in time and is safe to mutate by the caller.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.conversations))
	for id, content := range s.conversations {
		out[id] = content
	}
	return out
}

// Get returns the content stored for the given ID.
func (s *Store) Get(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.conversations[id]
	return content, ok
}

// Len returns the number of stored conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}
