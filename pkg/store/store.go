// Package store persists catalog snapshots. Three backends are supported:
// a single JSON file, a bbolt database, and a SQLite database. The catalog
// itself always lives in memory; the store only implements the explicit
// load/save lifecycle around it.
package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/jingkaihe/agentdex/pkg/catalog"
)

// ErrNoCatalog is returned by Load when nothing has been saved yet.
var ErrNoCatalog = errors.New("no saved catalog")

// CatalogStore persists and restores catalog snapshots.
type CatalogStore interface {
	Save(ctx context.Context, snap catalog.Snapshot) error
	Load(ctx context.Context) (catalog.Snapshot, error)
	Close() error
}

// Config selects and locates a store backend.
type Config struct {
	Backend  string // "json", "bbolt" or "sqlite"
	BasePath string // directory holding the store files
}

// DefaultConfig returns the default store configuration: a JSON file under
// ~/.agentdex.
func DefaultConfig() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user home directory")
	}
	return &Config{
		Backend:  "json",
		BasePath: filepath.Join(homeDir, ".agentdex"),
	}, nil
}

// New creates the store implementation selected by the configuration.
func New(ctx context.Context, config *Config) (CatalogStore, error) {
	if config == nil {
		var err error
		config, err = DefaultConfig()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create default store config")
		}
	}

	switch config.Backend {
	case "", "json":
		return NewJSONStore(config.BasePath)
	case "bbolt":
		return NewBBoltStore(config.BasePath)
	case "sqlite":
		return NewSQLiteStore(ctx, filepath.Join(config.BasePath, "catalog.db"))
	default:
		return nil, errors.Errorf("unknown store backend '%s'", config.Backend)
	}
}
