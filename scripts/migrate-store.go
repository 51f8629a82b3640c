package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/jingkaihe/agentdex/pkg/store"
)

// Moves a stored catalog between backends, e.g. from the json store to
// sqlite. Usage:
//
//	go run scripts/migrate-store.go -from json -to sqlite [-path ~/.agentdex]
func main() {
	from := flag.String("from", "json", "Source backend: json, bbolt, sqlite")
	to := flag.String("to", "sqlite", "Target backend: json, bbolt, sqlite")
	path := flag.String("path", "", "Base path of the store (defaults to ~/.agentdex)")
	flag.Parse()

	if err := runMigration(*from, *to, *path); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Migration completed successfully!")
}

func runMigration(from, to, path string) error {
	ctx := context.Background()

	if from == to {
		return errors.Errorf("source and target backends are both %q", from)
	}

	config, err := store.DefaultConfig()
	if err != nil {
		return err
	}
	if path != "" {
		config.BasePath = path
	}

	source, err := store.New(ctx, &store.Config{Backend: from, BasePath: config.BasePath})
	if err != nil {
		return errors.Wrapf(err, "failed to open %s store", from)
	}
	defer source.Close()

	snap, err := source.Load(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoCatalog) {
			return errors.Errorf("no catalog found in %s store at %s", from, config.BasePath)
		}
		return errors.Wrapf(err, "failed to load catalog from %s store", from)
	}

	fmt.Printf("Migrating %d agents and %d clusters from %s to %s\n",
		len(snap.Agents), len(snap.Clusters), from, to)

	target, err := store.New(ctx, &store.Config{Backend: to, BasePath: config.BasePath})
	if err != nil {
		return errors.Wrapf(err, "failed to open %s store", to)
	}
	defer target.Close()

	if err := target.Save(ctx, snap); err != nil {
		return errors.Wrapf(err, "failed to save catalog to %s store", to)
	}

	return nil
}
