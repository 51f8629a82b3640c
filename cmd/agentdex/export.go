package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/agentdex/pkg/document"
	"github.com/jingkaihe/agentdex/pkg/presenter"
	"github.com/jingkaihe/agentdex/pkg/telemetry"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog as an index document",
	Long: `Render the stored catalog back into the index document shape, including a
freshly recomputed Statistics block. Writes to stdout unless -o is given.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		output, _ := cmd.Flags().GetString("output")

		cat, st, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		var rendered []byte
		if err := telemetry.WithSpan(ctx, "export", func(_ context.Context) error {
			rendered = document.Render(cat)
			return nil
		}); err != nil {
			return err
		}

		if output == "" {
			_, err := os.Stdout.Write(rendered)
			return err
		}
		if err := os.WriteFile(output, rendered, 0o644); err != nil {
			return err
		}
		presenter.Success("Exported catalog to " + output)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file (defaults to stdout)")
	rootCmd.AddCommand(exportCmd)
}
