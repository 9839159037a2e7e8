package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"imgtree/internal/domain/models"

	"github.com/BurntSushi/toml"
)

// ErrNoSession means no session file exists yet; run `imgtree login`.
var ErrNoSession = errors.New("not logged in")

// SessionFile is the CLI's persisted login: which backend to talk to and as whom.
type SessionFile struct {
	BackendURL string         `toml:"backend_url"`
	Session    models.Session `toml:"session"`
}

// DefaultSessionPath returns ~/.config/imgtree/session.toml (or the OS equivalent).
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "imgtree", "session.toml"), nil
}

// ReadSession decodes a SessionFile from r.
func ReadSession(r io.Reader) (*SessionFile, error) {
	var sf SessionFile
	if _, err := toml.NewDecoder(r).Decode(&sf); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sf, nil
}

// WriteSession encodes sf to w.
func WriteSession(w io.Writer, sf *SessionFile) error {
	if err := toml.NewEncoder(w).Encode(sf); err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return nil
}

// LoadSessionFile reads the session at path. A missing file yields ErrNoSession.
func LoadSessionFile(path string) (*SessionFile, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	sf, err := ReadSession(f)
	if err != nil {
		return nil, fmt.Errorf("reading session from %s: %w", path, err)
	}
	if !sf.Session.Valid() {
		return nil, ErrNoSession
	}
	return sf, nil
}

// SaveSessionFile writes the session with owner-only permissions; it holds a token.
func SaveSessionFile(path string, sf *SessionFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	defer f.Close()

	if err := WriteSession(f, sf); err != nil {
		return fmt.Errorf("writing session to %s: %w", path, err)
	}
	return nil
}

// RemoveSessionFile deletes the session; a missing file is not an error.
func RemoveSessionFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
