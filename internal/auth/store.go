// Package auth keeps the client authenticated: it stores the credential pair,
// tracks the current-user snapshot, and wraps the HTTP transport with a
// single-flight token refresh on 401 responses.
package auth

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CredentialStore holds the two opaque credential slots. Access is short-lived
// and volatile; Refresh is longer-lived and durable. Implementations must be
// safe for concurrent use.
type CredentialStore interface {
	Access() string
	Refresh() string
	Set(access, refresh string) error
	Clear() error
}

// MemStore keeps both credentials in process memory. Used in tests and for
// one-shot flows that never persist a session.
type MemStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

func (s *MemStore) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *MemStore) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *MemStore) Set(access, refresh string) error {
	s.mu.Lock()
	s.access, s.refresh = access, refresh
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Clear() error {
	return s.Set("", "")
}

// File names under the client home directory. The refresh token lives under
// protected/ (durable across sessions); the access token under session/ is a
// disposable convenience copy and may be stale at any time.
const (
	refreshTokenFile = "protected/refresh_token"
	accessTokenFile  = "session/access_token"
)

// FileStore persists credentials under the client home directory with 0600
// permissions. The in-memory access copy is authoritative for the lifetime of
// the process; the refresh token is always read through to disk.
type FileStore struct {
	home string

	mu     sync.RWMutex
	access string
	loaded bool
}

// NewFileStore returns a store rooted at home. The directories are created on
// first Set.
func NewFileStore(home string) *FileStore {
	return &FileStore{home: home}
}

func (s *FileStore) Access() string {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return s.access
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.access = s.readFile(accessTokenFile)
		s.loaded = true
	}
	return s.access
}

func (s *FileStore) Refresh() string {
	return s.readFile(refreshTokenFile)
}

func (s *FileStore) Set(access, refresh string) error {
	s.mu.Lock()
	s.access = access
	s.loaded = true
	s.mu.Unlock()

	if err := s.writeFile(accessTokenFile, access); err != nil {
		return err
	}
	return s.writeFile(refreshTokenFile, refresh)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	s.access = ""
	s.loaded = true
	s.mu.Unlock()

	var firstErr error
	for _, name := range []string{accessTokenFile, refreshTokenFile} {
		if err := os.Remove(filepath.Join(s.home, filepath.FromSlash(name))); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *FileStore) readFile(name string) string {
	data, err := os.ReadFile(filepath.Join(s.home, filepath.FromSlash(name)))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *FileStore) writeFile(name, value string) error {
	path := filepath.Join(s.home, filepath.FromSlash(name))
	if value == "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(value+"\n"), 0o600)
}
