// internal/memory/store.go
package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arxa-ai/arxa/internal/util"
)

// FileStore persists the transcript as a JSON file.
type FileStore struct {
	Path string
}

// Load reads the transcript. A missing file is an empty session.
func (s *FileStore) Load() ([]Entry, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read transcript %q: %w", s.Path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse transcript %q: %w", s.Path, err)
	}
	return entries, nil
}

// Save writes the full transcript, creating parent directories as needed.
func (s *FileStore) Save(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return util.WriteFile(s.Path, data)
}

// NullStore keeps the session in memory only; the transcript is discarded
// when the session ends.
type NullStore struct{}

// Load always starts a fresh session.
func (NullStore) Load() ([]Entry, error) { return nil, nil }

// Save drops the transcript.
func (NullStore) Save([]Entry) error { return nil }
