package session

import (
	"context"
	"sync"
)

// memoryStore keeps sessions in process memory.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[int64]*Session)}
}

func (s *memoryStore) Get(ctx context.Context, identity int64) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[identity]
	if !ok {
		return nil, nil
	}
	copied := *sess
	return &copied, nil
}

func (s *memoryStore) Put(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *sess
	s.sessions[sess.Identity] = &copied
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, identity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, identity)
	return nil
}
