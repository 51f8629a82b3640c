package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/agentdex/pkg/catalog"
	"github.com/jingkaihe/agentdex/pkg/document"
	"github.com/jingkaihe/agentdex/pkg/logger"
	"github.com/jingkaihe/agentdex/pkg/presenter"
	"github.com/jingkaihe/agentdex/pkg/telemetry"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import an index document into the catalog",
	Long: `Import an AGENT_CLUSTERS.md-shaped index document, replacing the stored
catalog. Every problem in the document is collected and reported before the
command fails, so the whole document can be fixed in one pass.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		runID := uuid.New().String()
		log := logger.G(ctx).WithField("run_id", runID).WithField("file", args[0])

		source, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		cat := catalog.New(catalog.WithRemovePolicy(removePolicy()))

		var issues []document.Issue
		importErr := telemetry.WithSpan(ctx, "import",
			func(_ context.Context) error {
				var err error
				issues, err = document.Import(cat, source)
				return err
			},
			attribute.String("run_id", runID),
			attribute.String("file", args[0]),
		)

		presentImportIssues(issues)
		if importErr != nil {
			log.WithField("issues", len(issues)).Error("Import failed")
			return fmt.Errorf("import of '%s' failed", args[0])
		}

		stats := cat.Statistics()
		presenter.Success(fmt.Sprintf("Imported %d agents across %d clusters", stats.TotalAgents, stats.TotalClusters))

		if dryRun {
			presenter.Info("Dry run, catalog not saved")
			return nil
		}

		_, st, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := saveCatalog(ctx, st, cat); err != nil {
			return err
		}
		log.WithField("agents", stats.TotalAgents).Info("Catalog saved")
		return nil
	},
}

func init() {
	importCmd.Flags().Bool("dry-run", false, "Validate the document without saving the catalog")
	rootCmd.AddCommand(importCmd)
}
