package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/agentdex/pkg/presenter"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		asJSON, _ := cmd.Flags().GetBool("json")

		cat, st, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		stats := cat.Statistics()

		if asJSON {
			return json.NewEncoder(os.Stdout).Encode(stats)
		}

		presenter.Section("Catalog Statistics")
		presenter.Info(fmt.Sprintf("Total agents: %d", stats.TotalAgents))
		presenter.Info(fmt.Sprintf("Total clusters: %d", stats.TotalClusters))
		presenter.Info(fmt.Sprintf("Agents with multiple clusters: %d", stats.AgentsWithMultipleClusters))
		if stats.LargestCluster != nil {
			presenter.Info(fmt.Sprintf("Largest cluster: %s (%d agents)",
				stats.LargestCluster.Name, stats.LargestCluster.Size))
		}
		if len(stats.SmallestClusters) > 0 {
			parts := make([]string, 0, len(stats.SmallestClusters))
			for _, cs := range stats.SmallestClusters {
				parts = append(parts, fmt.Sprintf("%s (%d)", cs.Name, cs.Size))
			}
			presenter.Info("Smallest clusters: " + strings.Join(parts, ", "))
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "Output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}
