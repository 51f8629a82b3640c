// Package catalog implements the agent persona catalog: an authoritative
// store of agent records and topical clusters, a derived membership index
// for agent/cluster lookups, plus statistics and consistency reporting.
//
// All mutating operations serialize through a single writer lock; reads may
// run concurrently with each other but never interleave with a write, which
// keeps the membership index consistent with the cluster registry.
package catalog

import (
	"iter"
	"sync"
)

// AgentRecord describes one registered agent persona document.
type AgentRecord struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	FileRef string `json:"file_ref"`
}

// ClusterRecord describes one topical cluster and its declared members.
// MemberIDs preserves insertion order for display purposes.
type ClusterRecord struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	MemberIDs   []string `json:"member_ids"`
}

// RemovePolicy controls how RemoveAgent treats live cluster memberships.
type RemovePolicy int

const (
	// RemoveRestrict rejects removal of an agent that still belongs to any
	// cluster. The default.
	RemoveRestrict RemovePolicy = iota
	// RemoveCascade strips the agent from all clusters before removal.
	RemoveCascade
)

// Catalog is the in-memory agent catalog. The zero value is not usable;
// construct with New.
type Catalog struct {
	mu     sync.RWMutex
	policy RemovePolicy

	agents     map[string]*AgentRecord
	agentOrder []string

	clusters     map[string]*ClusterRecord
	clusterOrder []string

	// Inverted membership index: agent id -> set of cluster names. Kept in
	// sync incrementally on every membership mutation so lookups never
	// rescan the cluster registry.
	index map[string]map[string]struct{}
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithRemovePolicy sets the agent removal policy.
func WithRemovePolicy(p RemovePolicy) Option {
	return func(c *Catalog) {
		c.policy = p
	}
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		policy:   RemoveRestrict,
		agents:   make(map[string]*AgentRecord),
		clusters: make(map[string]*ClusterRecord),
		index:    make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterAgent adds a new agent record. It fails with *DuplicateIDError if
// the id is taken and *InvalidRecordError if id or summary is empty.
func (c *Catalog) RegisterAgent(id, summary, fileRef string) error {
	if id == "" {
		return &InvalidRecordError{Reason: "agent id must not be empty"}
	}
	if summary == "" {
		return &InvalidRecordError{Reason: "agent summary must not be empty"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.agents[id]; exists {
		return &DuplicateIDError{ID: id}
	}

	c.agents[id] = &AgentRecord{ID: id, Summary: summary, FileRef: fileRef}
	c.agentOrder = append(c.agentOrder, id)
	return nil
}

// AgentUpdate carries optional field changes for UpdateAgent. Nil fields are
// left untouched.
type AgentUpdate struct {
	Summary *string
	FileRef *string
}

// UpdateAgent applies the non-nil fields of update to an existing agent.
func (c *Catalog) UpdateAgent(id string, update AgentUpdate) error {
	if update.Summary != nil && *update.Summary == "" {
		return &InvalidRecordError{Reason: "agent summary must not be empty"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, exists := c.agents[id]
	if !exists {
		return &NotFoundError{Kind: "agent", Name: id}
	}

	if update.Summary != nil {
		rec.Summary = *update.Summary
	}
	if update.FileRef != nil {
		rec.FileRef = *update.FileRef
	}
	return nil
}

// RemoveAgent deletes an agent record. Under RemoveRestrict it fails with
// *ReferencedByClusterError while the agent belongs to any cluster; under
// RemoveCascade the memberships are removed first.
func (c *Catalog) RemoveAgent(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.agents[id]; !exists {
		return &NotFoundError{Kind: "agent", Name: id}
	}

	if members := c.index[id]; len(members) > 0 {
		if c.policy == RemoveRestrict {
			return &ReferencedByClusterError{ID: id, Clusters: setToSorted(members)}
		}
		for name := range members {
			c.detachMemberLocked(c.clusters[name], id)
		}
	}

	delete(c.agents, id)
	delete(c.index, id)
	c.agentOrder = removeString(c.agentOrder, id)
	return nil
}

// GetAgent returns a copy of the agent record.
func (c *Catalog) GetAgent(id string) (AgentRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, exists := c.agents[id]
	if !exists {
		return AgentRecord{}, &NotFoundError{Kind: "agent", Name: id}
	}
	return *rec, nil
}

// Agents returns a restartable sequence over all agent records in insertion
// order. Each range re-enumerates from the state current at that point, not
// from a stale snapshot taken at call time.
func (c *Catalog) Agents() iter.Seq[AgentRecord] {
	return func(yield func(AgentRecord) bool) {
		c.mu.RLock()
		records := make([]AgentRecord, 0, len(c.agentOrder))
		for _, id := range c.agentOrder {
			records = append(records, *c.agents[id])
		}
		c.mu.RUnlock()

		for _, rec := range records {
			if !yield(rec) {
				return
			}
		}
	}
}

// AgentCount reports the number of registered agents.
func (c *Catalog) AgentCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.agents)
}

func removeString(s []string, v string) []string {
	for i, cur := range s {
		if cur == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
