// Package store persists the study's outputs: fitted-model artifacts
// as JSON files cached by name, and a SQLite registry of pipeline and
// fitting runs for auditability.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"remodel/internal/model"
)

// FileStore caches fitted-model artifacts as JSON files in a
// directory, keyed by the model's deterministic artifact name.
type FileStore struct {
	Dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create artifact dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

// List returns the cached artifact names in directory order.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("store: list artifacts: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	return names, nil
}

// Load reads a cached fit by artifact name. A missing artifact is not
// an error: the harness falls through to fitting.
func (s *FileStore) Load(name string) (*model.FittedModel, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, name+".json"))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: load artifact %q: %w", name, err)
	}
	var m model.FittedModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false, fmt.Errorf("store: unmarshal artifact %q: %w", name, err)
	}
	return &m, true, nil
}

// Save writes a fit under its artifact name, replacing any previous
// version.
func (s *FileStore) Save(m *model.FittedModel) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal artifact %q: %w", m.Name(), err)
	}
	path := filepath.Join(s.Dir, m.Name()+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("store: write artifact %q: %w", m.Name(), err)
	}
	return nil
}

var _ model.Cache = (*FileStore)(nil)
