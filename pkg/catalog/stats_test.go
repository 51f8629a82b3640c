package catalog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatistics_Empty(t *testing.T) {
	stats := New().Statistics()
	assert.Equal(t, 0, stats.TotalAgents)
	assert.Equal(t, 0, stats.TotalClusters)
	assert.Equal(t, 0, stats.AgentsWithMultipleClusters)
	assert.Nil(t, stats.LargestCluster)
	assert.Empty(t, stats.SmallestClusters)
}

func TestStatistics_Counts(t *testing.T) {
	cat := New()
	require.NoError(t, cat.RegisterAgent("agent-a", "summary", "a.md"))
	require.NoError(t, cat.RegisterAgent("agent-b", "summary", "b.md"))
	require.NoError(t, cat.RegisterAgent("agent-c", "summary", "c.md"))
	require.NoError(t, cat.CreateCluster("Big Cluster", "three members"))
	require.NoError(t, cat.CreateCluster("Small Cluster", "one member"))
	for _, id := range []string{"agent-a", "agent-b", "agent-c"} {
		require.NoError(t, cat.AddMember("Big Cluster", id))
	}
	require.NoError(t, cat.AddMember("Small Cluster", "agent-a"))

	stats := cat.Statistics()
	assert.Equal(t, 3, stats.TotalAgents)
	assert.Equal(t, 2, stats.TotalClusters)
	assert.Equal(t, 1, stats.AgentsWithMultipleClusters)
	require.NotNil(t, stats.LargestCluster)
	assert.Equal(t, ClusterSize{Name: "Big Cluster", Size: 3}, *stats.LargestCluster)
	assert.Equal(t, []ClusterSize{{Name: "Small Cluster", Size: 1}}, stats.SmallestClusters)
}

func TestStatistics_SmallestClusterTies(t *testing.T) {
	cat := New()
	require.NoError(t, cat.RegisterAgent("agent-a", "summary", "a.md"))
	require.NoError(t, cat.RegisterAgent("agent-b", "summary", "b.md"))
	require.NoError(t, cat.RegisterAgent("agent-c", "summary", "c.md"))

	require.NoError(t, cat.CreateCluster("First Tie", "one member"))
	require.NoError(t, cat.CreateCluster("Bigger", "two members"))
	require.NoError(t, cat.CreateCluster("Second Tie", "one member"))
	require.NoError(t, cat.AddMember("First Tie", "agent-a"))
	require.NoError(t, cat.AddMember("Bigger", "agent-b"))
	require.NoError(t, cat.AddMember("Bigger", "agent-c"))
	require.NoError(t, cat.AddMember("Second Tie", "agent-b"))

	stats := cat.Statistics()
	assert.Equal(t, []ClusterSize{
		{Name: "First Tie", Size: 1},
		{Name: "Second Tie", Size: 1},
	}, stats.SmallestClusters, "every cluster tied at the minimum is reported")
}

// Mirrors the shape of the source catalog: 63 agents across 17 clusters with
// exactly three agents appearing in two clusters each.
func TestStatistics_SourceCatalogScenario(t *testing.T) {
	cat := New()

	crossCluster := map[string][]string{
		"cloud-architect":      {"Architecture & System Design", "Infrastructure & DevOps"},
		"ml-pipeline-engineer": {"Data Engineering", "AI/LLM Development"},
		"senior-code-reviewer": {"Testing & Quality Assurance", "Refactoring & Code Quality"},
	}

	clusters := []string{
		"Architecture & System Design", "Infrastructure & DevOps",
		"Data Engineering", "AI/LLM Development",
		"Testing & Quality Assurance", "Refactoring & Code Quality",
		"Security & Compliance", "Frontend Development", "Backend Development",
		"Mobile Development", "Documentation", "Performance Engineering",
		"Developer Experience", "Observability", "Release Engineering",
		"Data Science", "Product Engineering",
	}
	require.Len(t, clusters, 17)
	for _, name := range clusters {
		require.NoError(t, cat.CreateCluster(name, "cluster description"))
	}

	for id, memberOf := range crossCluster {
		require.NoError(t, cat.RegisterAgent(id, "cross-cluster agent", id+".md"))
		for _, cluster := range memberOf {
			require.NoError(t, cat.AddMember(cluster, id))
		}
	}

	// Fill out the remaining 60 single-cluster agents round-robin.
	for i := 0; i < 60; i++ {
		id := fmt.Sprintf("agent-%02d", i)
		require.NoError(t, cat.RegisterAgent(id, "single-cluster agent", id+".md"))
		require.NoError(t, cat.AddMember(clusters[i%len(clusters)], id))
	}

	stats := cat.Statistics()
	assert.Equal(t, 63, stats.TotalAgents)
	assert.Equal(t, 17, stats.TotalClusters)
	assert.Equal(t, 3, stats.AgentsWithMultipleClusters)

	for id := range crossCluster {
		assert.True(t, cat.IsCrossCluster(id), "%s should be cross-cluster", id)
	}
}
