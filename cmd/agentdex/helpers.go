package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/jingkaihe/agentdex/pkg/catalog"
	"github.com/jingkaihe/agentdex/pkg/document"
	"github.com/jingkaihe/agentdex/pkg/presenter"
	"github.com/jingkaihe/agentdex/pkg/store"
)

func storeConfig() (*store.Config, error) {
	config, err := store.DefaultConfig()
	if err != nil {
		return nil, err
	}
	if backend := viper.GetString("store.backend"); backend != "" {
		config.Backend = backend
	}
	if path := viper.GetString("store.path"); path != "" {
		config.BasePath = path
	}
	return config, nil
}

func removePolicy() catalog.RemovePolicy {
	if viper.GetString("remove_policy") == "cascade" {
		return catalog.RemoveCascade
	}
	return catalog.RemoveRestrict
}

// openCatalog loads the persisted catalog into memory. A missing store yields
// an empty catalog, not an error.
func openCatalog(ctx context.Context) (*catalog.Catalog, store.CatalogStore, error) {
	return openCatalogWithPolicy(ctx, removePolicy())
}

// openCatalogWithPolicy is openCatalog with an explicit removal policy, for
// commands whose flags override the configured one.
func openCatalogWithPolicy(ctx context.Context, policy catalog.RemovePolicy) (*catalog.Catalog, store.CatalogStore, error) {
	config, err := storeConfig()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.New(ctx, config)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open catalog store")
	}

	cat := catalog.New(catalog.WithRemovePolicy(policy))

	snap, err := st.Load(ctx)
	switch {
	case err == nil:
		cat.Restore(snap)
	case errors.Is(err, store.ErrNoCatalog):
		// First run, start empty.
	default:
		st.Close()
		return nil, nil, errors.Wrap(err, "failed to load catalog")
	}

	return cat, st, nil
}

func saveCatalog(ctx context.Context, st store.CatalogStore, cat *catalog.Catalog) error {
	return errors.Wrap(st.Save(ctx, cat.Snapshot()), "failed to save catalog")
}

func presentImportIssues(issues []document.Issue) {
	for _, issue := range issues {
		if issue.Fatal {
			presenter.Error(errors.New(issue.Message), string(issue.Kind))
		} else {
			presenter.Warning(fmt.Sprintf("%s: %s", issue.Kind, issue.Message))
		}
	}
}

func presentValidationIssues(issues []catalog.Issue) (errorCount int) {
	for _, issue := range issues {
		if issue.Severity == catalog.SeverityError {
			presenter.Error(errors.New(issue.Message), string(issue.Kind))
			errorCount++
		} else {
			presenter.Warning(fmt.Sprintf("%s: %s", issue.Kind, issue.Message))
		}
	}
	return errorCount
}
