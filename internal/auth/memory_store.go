package auth

import (
	"context"
	"sync"
)

// MemoryStore keeps the session in process memory. It backs tests and the
// CREDENTIAL_STORE=memory mode of the bridge server.
type MemoryStore struct {
	mu      sync.RWMutex
	token   string
	profile []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token(_ context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != "", nil
}

func (s *MemoryStore) User(_ context.Context) (User, bool, error) {
	s.mu.RLock()
	raw := s.profile
	s.mu.RUnlock()
	if raw == nil {
		return User{}, false, nil
	}
	u, err := ParseUser(raw)
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func (s *MemoryStore) Save(_ context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = sess.Token
	s.profile = append([]byte(nil), sess.User.profileBytes()...)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.profile = nil
	return nil
}
