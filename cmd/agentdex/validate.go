package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/agentdex/pkg/presenter"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Audit the catalog for consistency problems",
	Long: `Check the stored catalog for dangling member references, empty clusters,
duplicate memberships, and orphan agents. Orphan agents are warnings only;
the command exits non-zero when hard consistency errors are found.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cat, st, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		issues := cat.Validate()
		if len(issues) == 0 {
			presenter.Success("Catalog is consistent")
			return nil
		}

		errorCount := presentValidationIssues(issues)
		if errorCount > 0 {
			return fmt.Errorf("catalog has %d consistency errors", errorCount)
		}
		presenter.Info(fmt.Sprintf("%d warnings, no errors", len(issues)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
