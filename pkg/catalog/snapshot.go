package catalog

// Snapshot is the serializable projection of a catalog: agents and clusters
// in declaration order. Membership is carried only by each cluster's member
// list; the inverted index is rebuilt on restore.
type Snapshot struct {
	Agents   []AgentRecord   `json:"agents"`
	Clusters []ClusterRecord `json:"clusters"`
}

// Snapshot captures the current catalog contents.
func (c *Catalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		Agents:   make([]AgentRecord, 0, len(c.agentOrder)),
		Clusters: make([]ClusterRecord, 0, len(c.clusterOrder)),
	}
	for _, id := range c.agentOrder {
		snap.Agents = append(snap.Agents, *c.agents[id])
	}
	for _, name := range c.clusterOrder {
		snap.Clusters = append(snap.Clusters, copyCluster(c.clusters[name]))
	}
	return snap
}

// Restore replaces the catalog contents with the snapshot, rebuilding the
// membership index from the cluster member lists. Restore is deliberately
// permissive: dangling or duplicate member references in the snapshot are
// preserved so that Validate can surface them instead of silently dropping
// data from an externally edited document.
func (c *Catalog) Restore(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.agents = make(map[string]*AgentRecord, len(snap.Agents))
	c.agentOrder = c.agentOrder[:0]
	for _, rec := range snap.Agents {
		if _, exists := c.agents[rec.ID]; exists {
			continue
		}
		r := rec
		c.agents[rec.ID] = &r
		c.agentOrder = append(c.agentOrder, rec.ID)
	}

	c.clusters = make(map[string]*ClusterRecord, len(snap.Clusters))
	c.clusterOrder = c.clusterOrder[:0]
	c.index = make(map[string]map[string]struct{})
	for _, rec := range snap.Clusters {
		if _, exists := c.clusters[rec.Name]; exists {
			continue
		}
		r := copyCluster(&rec)
		c.clusters[rec.Name] = &r
		c.clusterOrder = append(c.clusterOrder, rec.Name)

		for _, agentID := range r.MemberIDs {
			if c.index[agentID] == nil {
				c.index[agentID] = make(map[string]struct{})
			}
			c.index[agentID][rec.Name] = struct{}{}
		}
	}
}
