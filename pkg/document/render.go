package document

import (
	"fmt"
	"strings"

	"github.com/jingkaihe/agentdex/pkg/catalog"
)

const defaultTitle = "Agent Clusters"

// Render emits the catalog back into the index document shape: the Clusters
// section, the Agent Index table, and a freshly recomputed Statistics block.
// Importing the output reproduces the same agents, clusters, and memberships.
func Render(cat *catalog.Catalog) []byte {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", defaultTitle)
	sb.WriteString("## Clusters\n\n")

	for cluster := range cat.Clusters() {
		fmt.Fprintf(&sb, "### %s\n\n", cluster.Name)
		if cluster.Description != "" {
			fmt.Fprintf(&sb, "%s\n\n", cluster.Description)
		}
		for _, id := range cluster.MemberIDs {
			rec, err := cat.GetAgent(id)
			if err != nil {
				// Dangling reference in a restored snapshot. Keep the id so
				// the document still shows what the cluster declared.
				fmt.Fprintf(&sb, "- [%s](%s)\n", id, "")
				continue
			}
			fmt.Fprintf(&sb, "- [%s](%s) - %s\n", rec.ID, rec.FileRef, rec.Summary)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Agent Index\n\n")
	sb.WriteString("| Agent | Summary |\n")
	sb.WriteString("|-------|---------|\n")
	for rec := range cat.Agents() {
		fmt.Fprintf(&sb, "| [%s](%s) | %s |\n", rec.ID, rec.FileRef, rec.Summary)
	}
	sb.WriteString("\n")

	stats := cat.Statistics()
	sb.WriteString("## Statistics\n\n")
	fmt.Fprintf(&sb, "- Total agents: %d\n", stats.TotalAgents)
	fmt.Fprintf(&sb, "- Total clusters: %d\n", stats.TotalClusters)
	fmt.Fprintf(&sb, "- Agents with multiple clusters: %d\n", stats.AgentsWithMultipleClusters)
	if stats.LargestCluster != nil {
		fmt.Fprintf(&sb, "- Largest cluster: %s (%d agents)\n",
			stats.LargestCluster.Name, stats.LargestCluster.Size)
	}
	if len(stats.SmallestClusters) > 0 {
		parts := make([]string, 0, len(stats.SmallestClusters))
		for _, cs := range stats.SmallestClusters {
			parts = append(parts, fmt.Sprintf("%s (%d)", cs.Name, cs.Size))
		}
		fmt.Fprintf(&sb, "- Smallest clusters: %s\n", strings.Join(parts, ", "))
	}

	return []byte(sb.String())
}
