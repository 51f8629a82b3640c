package catalog

import (
	"fmt"
	"strings"
)

// NotFoundError indicates a lookup for an agent or cluster that does not exist.
type NotFoundError struct {
	Kind string // "agent" or "cluster"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.Name)
}

// DuplicateIDError indicates an attempt to register an agent id that already exists.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("agent '%s' is already registered", e.ID)
}

// DuplicateClusterError indicates an attempt to create a cluster name that already exists.
type DuplicateClusterError struct {
	Name string
}

func (e *DuplicateClusterError) Error() string {
	return fmt.Sprintf("cluster '%s' already exists", e.Name)
}

// InvalidRecordError indicates a record that fails basic field validation.
type InvalidRecordError struct {
	Reason string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid record: %s", e.Reason)
}

// ReferencedByClusterError indicates an agent removal blocked by live cluster
// memberships under the restrict policy.
type ReferencedByClusterError struct {
	ID       string
	Clusters []string
}

func (e *ReferencedByClusterError) Error() string {
	return fmt.Sprintf("agent '%s' is still a member of clusters: %s",
		e.ID, strings.Join(e.Clusters, ", "))
}
