package auth

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store holds the bearer token for the current user. It is the single
// authentication object handed to components: login and logout are the
// only write paths, everything else reads.
type Store struct {
	path   string
	logger *slog.Logger

	mu    sync.RWMutex
	token string
}

// NewStore loads any persisted token from path. A missing or unreadable
// token file just means the user is logged out.
func NewStore(path string, logger *slog.Logger) *Store {
	s := &Store{path: path, logger: logger}

	data, err := os.ReadFile(path)
	if err == nil {
		s.token = strings.TrimSpace(string(data))
	} else if !os.IsNotExist(err) {
		logger.Warn("failed to read token file", "path", path, "error", err)
	}

	return s
}

// Token returns the current bearer token, empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Valid reports whether a token is present and not expired.
func (s *Store) Valid() bool {
	return !IsExpired(s.Token())
}

// SetToken stores a new token after a successful login and persists it.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	s.logger.Info("stored auth token", "path", s.path)
	return nil
}

// Clear logs the user out and removes the persisted token.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}

	s.logger.Info("cleared auth token")
	return nil
}
