package catalog

// ClusterSize pairs a cluster name with its member count.
type ClusterSize struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Statistics holds the derived aggregates shown in the index document.
// Always recomputed on demand from current state, never cached.
type Statistics struct {
	TotalAgents                int           `json:"total_agents"`
	TotalClusters              int           `json:"total_clusters"`
	AgentsWithMultipleClusters int           `json:"agents_with_multiple_clusters"`
	LargestCluster             *ClusterSize  `json:"largest_cluster,omitempty"`
	SmallestClusters           []ClusterSize `json:"smallest_clusters,omitempty"`
}

// Statistics computes the catalog aggregates. The largest cluster reports the
// first cluster (in declaration order) at the maximum size; smallest clusters
// report every cluster tied at the minimum size, in declaration order.
func (c *Catalog) Statistics() Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Statistics{
		TotalAgents:   len(c.agents),
		TotalClusters: len(c.clusters),
	}

	for _, set := range c.index {
		if len(set) > 1 {
			stats.AgentsWithMultipleClusters++
		}
	}

	if len(c.clusterOrder) == 0 {
		return stats
	}

	maxSize, minSize := -1, -1
	for _, name := range c.clusterOrder {
		size := len(c.clusters[name].MemberIDs)
		if size > maxSize {
			maxSize = size
			stats.LargestCluster = &ClusterSize{Name: name, Size: size}
		}
		if minSize == -1 || size < minSize {
			minSize = size
		}
	}

	for _, name := range c.clusterOrder {
		if size := len(c.clusters[name].MemberIDs); size == minSize {
			stats.SmallestClusters = append(stats.SmallestClusters, ClusterSize{Name: name, Size: size})
		}
	}

	return stats
}
