package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"mineru-cli/internal/domain"
)

// Store defines persistence operations for CLI settings.
type Store interface {
	Load() (domain.Settings, error)
	Save(domain.Settings) error
	Path() string
}

// JSONStore persists settings in a single JSON file on disk.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed settings store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file location for display.
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads settings from disk. A missing or corrupt file behaves as
// empty settings so a bad config never blocks re-entering a token.
func (s *JSONStore) Load() (domain.Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Settings{}, nil
		}

		return domain.Settings{}, err
	}

	var cfg domain.Settings
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.Settings{}, nil
	}

	return cfg, nil
}

// Save writes settings as indented JSON and creates parent directories.
func (s *JSONStore) Save(cfg domain.Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o644)
}
