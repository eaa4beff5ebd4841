// Package session persists the authenticated user's token and profile on
// disk. It replaces ambient global state with an injected store: read once at
// startup, written at login, removed at logout.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Profile is the user profile returned by the login endpoint.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session is one authenticated session.
type Session struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// Store holds the current session and mirrors it to a file.
type Store struct {
	mu   sync.RWMutex
	path string
	cur  *Session
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the session file. A missing file is not an error: the store is
// simply anonymous.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.cur = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session file: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return fmt.Errorf("parse session file: %w", err)
	}
	if sess.Token == "" {
		s.cur = nil
		return nil
	}
	s.cur = &sess
	return nil
}

// Current returns the active session, if any.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return Session{}, false
	}
	return *s.cur, true
}

// Token returns the bearer token, or "" when anonymous.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return ""
	}
	return s.cur.Token
}

// Save stores sess in memory and on disk.
func (s *Store) Save(sess Session) error {
	if sess.Token == "" {
		return fmt.Errorf("refusing to save session without token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	s.cur = &sess
	return nil
}

// Clear forgets the session and removes its file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = nil
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
