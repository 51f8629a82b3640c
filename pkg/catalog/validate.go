package catalog

import "fmt"

// IssueKind identifies a class of consistency problem.
type IssueKind string

const (
	// IssueDanglingMemberReference flags a cluster member id with no
	// corresponding agent record.
	IssueDanglingMemberReference IssueKind = "dangling_member_reference"
	// IssueEmptyCluster flags a cluster with zero members.
	IssueEmptyCluster IssueKind = "empty_cluster"
	// IssueOrphanAgent flags an agent belonging to no cluster. Informational:
	// the catalog does not require every agent to be clustered.
	IssueOrphanAgent IssueKind = "orphan_agent"
	// IssueDuplicateMembership flags an agent id listed more than once within
	// a single cluster's member list.
	IssueDuplicateMembership IssueKind = "duplicate_membership"
)

// Severity distinguishes hard consistency errors from advisories.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue describes one consistency finding. Issues are data, not errors: a
// slightly inconsistent catalog stays fully readable.
type Issue struct {
	Kind     IssueKind `json:"kind"`
	Severity Severity  `json:"severity"`
	Cluster  string    `json:"cluster,omitempty"`
	AgentID  string    `json:"agent_id,omitempty"`
	Message  string    `json:"message"`
}

// Validate audits the catalog and returns every consistency issue found. It
// never mutates state and never fails on data problems. The normal mutation
// API cannot introduce dangling or duplicate memberships; those arise from
// permissive Restore of external snapshots.
func (c *Catalog) Validate() []Issue {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var issues []Issue

	for _, name := range c.clusterOrder {
		cluster := c.clusters[name]

		if len(cluster.MemberIDs) == 0 {
			issues = append(issues, Issue{
				Kind:     IssueEmptyCluster,
				Severity: SeverityError,
				Cluster:  name,
				Message:  fmt.Sprintf("cluster '%s' has no members", name),
			})
			continue
		}

		seen := make(map[string]bool, len(cluster.MemberIDs))
		for _, agentID := range cluster.MemberIDs {
			if _, exists := c.agents[agentID]; !exists {
				issues = append(issues, Issue{
					Kind:     IssueDanglingMemberReference,
					Severity: SeverityError,
					Cluster:  name,
					AgentID:  agentID,
					Message:  fmt.Sprintf("cluster '%s' references unknown agent '%s'", name, agentID),
				})
			}
			if seen[agentID] {
				issues = append(issues, Issue{
					Kind:     IssueDuplicateMembership,
					Severity: SeverityError,
					Cluster:  name,
					AgentID:  agentID,
					Message:  fmt.Sprintf("cluster '%s' lists agent '%s' more than once", name, agentID),
				})
			}
			seen[agentID] = true
		}
	}

	for _, agentID := range c.agentOrder {
		if len(c.index[agentID]) == 0 {
			issues = append(issues, Issue{
				Kind:     IssueOrphanAgent,
				Severity: SeverityWarning,
				AgentID:  agentID,
				Message:  fmt.Sprintf("agent '%s' belongs to no cluster", agentID),
			})
		}
	}

	return issues
}
