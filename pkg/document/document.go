// Package document imports and exports catalog index documents: markdown
// files with a Clusters section of per-cluster member bullets, an Agent Index
// table, and a derived Statistics block. All markdown-specific inference
// happens here, once; downstream code only ever sees validated ids.
package document

import "fmt"

// AgentEntry is one agent reference extracted from the document, either from
// a cluster bullet or an index table row.
type AgentEntry struct {
	ID      string
	Path    string
	Summary string
}

// ClusterSection is one parsed cluster subsection.
type ClusterSection struct {
	Name        string
	Description string
	Members     []AgentEntry
}

// Document is the parsed shape of an index document. The statistics block is
// never parsed; it is derived data and gets recomputed on export.
type Document struct {
	Title    string
	Clusters []ClusterSection
	Index    []AgentEntry
}

// IssueKind identifies a class of import problem.
type IssueKind string

const (
	// IssueMalformedBullet flags a cluster list bullet without an agent link.
	IssueMalformedBullet IssueKind = "malformed_bullet"
	// IssueMissingID flags a link with empty text where the agent id belongs.
	IssueMissingID IssueKind = "missing_id"
	// IssueMissingPath flags an agent reference without a document path.
	IssueMissingPath IssueKind = "missing_path"
	// IssueSummaryMismatch flags an agent whose cluster bullet summary
	// disagrees with its index table summary.
	IssueSummaryMismatch IssueKind = "summary_mismatch"
	// IssueDuplicateMember flags an agent bulleted twice in one cluster.
	IssueDuplicateMember IssueKind = "duplicate_member"
	// IssueDuplicateCluster flags a cluster subsection appearing twice.
	IssueDuplicateCluster IssueKind = "duplicate_cluster"
	// IssueInvalidAgent flags an agent reference the catalog rejected,
	// typically for a missing summary.
	IssueInvalidAgent IssueKind = "invalid_agent"
	// IssueUnregisteredMember flags a cluster member whose agent could not be
	// registered and therefore cannot be attached to the cluster.
	IssueUnregisteredMember IssueKind = "unregistered_member"
)

// Issue describes one problem found while importing a document. Issues are
// collected exhaustively so a maintainer can fix the whole document in one
// pass instead of replaying import per problem.
type Issue struct {
	Kind    IssueKind
	Fatal   bool
	Cluster string
	AgentID string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Kind, i.Message)
}
