package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/jingkaihe/agentdex/pkg/catalog"
)

const jsonFileName = "catalog.json"

// JSONStore persists the catalog snapshot as a single JSON file with atomic
// writes (temp file + rename).
type JSONStore struct {
	basePath string
}

// NewJSONStore creates a JSON file-based store rooted at basePath.
func NewJSONStore(basePath string) (*JSONStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create store directory")
	}
	return &JSONStore{basePath: basePath}, nil
}

// Save writes the snapshot atomically.
func (s *JSONStore) Save(_ context.Context, snap catalog.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal catalog snapshot")
	}

	filePath := filepath.Join(s.basePath, jsonFileName)
	tempPath := filePath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write temporary catalog file")
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return errors.Wrap(err, "failed to rename temporary catalog file")
	}
	return nil
}

// Load reads the snapshot, returning ErrNoCatalog when the file is absent.
func (s *JSONStore) Load(_ context.Context) (catalog.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.basePath, jsonFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return catalog.Snapshot{}, ErrNoCatalog
		}
		return catalog.Snapshot{}, errors.Wrap(err, "failed to read catalog file")
	}

	var snap catalog.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return catalog.Snapshot{}, errors.Wrap(err, "failed to unmarshal catalog snapshot")
	}
	return snap, nil
}

// Close is a no-op; the JSON store holds no resources between operations.
func (s *JSONStore) Close() error {
	return nil
}
