package catalog

import (
	"iter"
	"sort"
)

// CreateCluster adds a new empty cluster.
func (c *Catalog) CreateCluster(name, description string) error {
	if name == "" {
		return &InvalidRecordError{Reason: "cluster name must not be empty"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.clusters[name]; exists {
		return &DuplicateClusterError{Name: name}
	}

	c.clusters[name] = &ClusterRecord{Name: name, Description: description}
	c.clusterOrder = append(c.clusterOrder, name)
	return nil
}

// AddMember declares an agent as a member of a cluster. Adding an existing
// member is a no-op, not an error. Both the cluster and the agent must exist.
func (c *Catalog) AddMember(clusterName, agentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cluster, exists := c.clusters[clusterName]
	if !exists {
		return &NotFoundError{Kind: "cluster", Name: clusterName}
	}
	if _, exists := c.agents[agentID]; !exists {
		return &NotFoundError{Kind: "agent", Name: agentID}
	}

	if _, member := c.index[agentID][clusterName]; member {
		return nil
	}

	cluster.MemberIDs = append(cluster.MemberIDs, agentID)
	if c.index[agentID] == nil {
		c.index[agentID] = make(map[string]struct{})
	}
	c.index[agentID][clusterName] = struct{}{}
	return nil
}

// RemoveMember withdraws an agent's membership in a cluster. Removing a
// non-member is a no-op. The agent record itself is untouched.
func (c *Catalog) RemoveMember(clusterName, agentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cluster, exists := c.clusters[clusterName]
	if !exists {
		return &NotFoundError{Kind: "cluster", Name: clusterName}
	}

	c.detachMemberLocked(cluster, agentID)
	return nil
}

// DeleteCluster removes a cluster and all of its membership entries. Member
// agents are untouched.
func (c *Catalog) DeleteCluster(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cluster, exists := c.clusters[name]
	if !exists {
		return &NotFoundError{Kind: "cluster", Name: name}
	}

	for _, agentID := range cluster.MemberIDs {
		if set := c.index[agentID]; set != nil {
			delete(set, name)
			if len(set) == 0 {
				delete(c.index, agentID)
			}
		}
	}

	delete(c.clusters, name)
	c.clusterOrder = removeString(c.clusterOrder, name)
	return nil
}

// GetCluster returns a copy of the cluster record.
func (c *Catalog) GetCluster(name string) (ClusterRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cluster, exists := c.clusters[name]
	if !exists {
		return ClusterRecord{}, &NotFoundError{Kind: "cluster", Name: name}
	}
	return copyCluster(cluster), nil
}

// Clusters returns a restartable sequence over all clusters in insertion
// order. Each range re-enumerates from current state.
func (c *Catalog) Clusters() iter.Seq[ClusterRecord] {
	return func(yield func(ClusterRecord) bool) {
		c.mu.RLock()
		records := make([]ClusterRecord, 0, len(c.clusterOrder))
		for _, name := range c.clusterOrder {
			records = append(records, copyCluster(c.clusters[name]))
		}
		c.mu.RUnlock()

		for _, rec := range records {
			if !yield(rec) {
				return
			}
		}
	}
}

// ClusterCount reports the number of clusters.
func (c *Catalog) ClusterCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clusters)
}

// ClustersFor returns the sorted cluster names an agent belongs to. An agent
// with no memberships (or an unknown agent) yields an empty slice, never an
// error.
func (c *Catalog) ClustersFor(agentID string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return setToSorted(c.index[agentID])
}

// MembersOf returns the member agent ids of a cluster in declaration order.
func (c *Catalog) MembersOf(clusterName string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cluster, exists := c.clusters[clusterName]
	if !exists {
		return nil, &NotFoundError{Kind: "cluster", Name: clusterName}
	}
	out := make([]string, len(cluster.MemberIDs))
	copy(out, cluster.MemberIDs)
	return out, nil
}

// IsCrossCluster reports whether the agent belongs to more than one cluster.
func (c *Catalog) IsCrossCluster(agentID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.index[agentID]) > 1
}

// detachMemberLocked removes agentID from a cluster's member list and from
// the inverted index. Caller must hold the write lock.
func (c *Catalog) detachMemberLocked(cluster *ClusterRecord, agentID string) {
	cluster.MemberIDs = removeString(cluster.MemberIDs, agentID)
	if set := c.index[agentID]; set != nil {
		delete(set, cluster.Name)
		if len(set) == 0 {
			delete(c.index, agentID)
		}
	}
}

func copyCluster(cluster *ClusterRecord) ClusterRecord {
	out := *cluster
	out.MemberIDs = make([]string, len(cluster.MemberIDs))
	copy(out.MemberIDs, cluster.MemberIDs)
	return out
}

func setToSorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
