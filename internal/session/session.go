// Package session persists and supplies the seller's bearer credential.
// The token is the only durable client-side state; it lives in a single
// well-known file and its absence is a normal, handled condition.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	configDirName = "secondhand"
	tokenFileName = "token"
)

// Store reads and writes the session token at a fixed path. It implements
// the API client's TokenSource.
type Store struct {
	path string
}

// NewStore creates a Store at the default per-user location
// (os.UserConfigDir()/secondhand/token).
func NewStore() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	return NewStoreAt(filepath.Join(dir, configDirName, tokenFileName)), nil
}

// NewStoreAt creates a Store backed by an explicit file path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Token returns the persisted credential. A missing or empty file reports
// absence, never an error.
func (s *Store) Token() (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}

// Save persists the credential, creating the parent directory if needed.
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// Clear removes the persisted credential. Clearing an absent token is not
// an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// Static is a fixed in-memory token source for tests and one-shot flows.
// An empty Static reports absence.
type Static string

// Token implements TokenSource.
func (s Static) Token() (string, bool) {
	return string(s), s != ""
}
