package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the session as a small JSON document keyed like the
// browser's localStorage, so a CLI login survives between invocations.
type FileStore struct {
	path string
	mu   sync.Mutex
}

type fileDocument struct {
	Token string          `json:"faculty_token,omitempty"`
	User  json.RawMessage `json:"faculty_user,omitempty"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) read() (fileDocument, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return fileDocument{}, false, nil
	}
	if err != nil {
		return fileDocument{}, false, fmt.Errorf("read credential file: %w", err)
	}
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fileDocument{}, false, fmt.Errorf("decode credential file: %w", err)
	}
	return doc, true, nil
}

func (s *FileStore) Token(_ context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, found, err := s.read()
	if err != nil || !found {
		return "", false, err
	}
	return doc.Token, doc.Token != "", nil
}

func (s *FileStore) User(_ context.Context) (User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, found, err := s.read()
	if err != nil || !found || len(doc.User) == 0 {
		return User{}, false, err
	}
	u, err := ParseUser(doc.User)
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func (s *FileStore) Save(_ context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(fileDocument{
		Token: sess.Token,
		User:  sess.User.profileBytes(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	// write-then-rename so a crash never leaves half a token on disk
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}
