package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/agentdex/pkg/catalog"
	"github.com/jingkaihe/agentdex/pkg/logger"
	"github.com/jingkaihe/agentdex/pkg/personas"
	"github.com/jingkaihe/agentdex/pkg/presenter"
)

var scanCmd = &cobra.Command{
	Use:   "scan [dirs...]",
	Short: "Discover persona documents and register them as agents",
	Long: `Scan directories for persona markdown files and register each one in the
catalog. The agent id derives from the filename (or frontmatter name), the
summary from frontmatter description or the first heading. Without arguments
the default persona directories are scanned (./personas, ~/.agentdex/personas).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pattern, _ := cmd.Flags().GetString("pattern")

		opts := []personas.Option{personas.WithPattern(pattern)}
		if len(args) > 0 {
			opts = append(opts, personas.WithDirs(args...))
		}

		discovery, err := personas.NewDiscovery(opts...)
		if err != nil {
			return err
		}

		found, err := discovery.Discover(ctx)
		if err != nil {
			return err
		}

		cat, st, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		registered, updated := 0, 0
		for _, p := range found {
			err := cat.RegisterAgent(p.ID, p.Summary, p.Path)
			if err == nil {
				registered++
				continue
			}

			var dup *catalog.DuplicateIDError
			if !errors.As(err, &dup) {
				presenter.Error(err, "skipping persona "+p.ID)
				continue
			}
			// Already known: refresh the summary and file reference.
			if err := cat.UpdateAgent(p.ID, catalog.AgentUpdate{Summary: &p.Summary, FileRef: &p.Path}); err != nil {
				presenter.Error(err, "failed to refresh persona "+p.ID)
				continue
			}
			updated++
		}

		if err := saveCatalog(ctx, st, cat); err != nil {
			return err
		}

		logger.G(ctx).WithFields(map[string]any{
			"registered": registered,
			"updated":    updated,
		}).Info("Persona scan complete")
		presenter.Success(fmt.Sprintf("Registered %d new and refreshed %d existing agents", registered, updated))
		return nil
	},
}

func init() {
	scanCmd.Flags().String("pattern", "**/*.md", "Glob pattern for persona files, relative to each directory")
	rootCmd.AddCommand(scanCmd)
}
