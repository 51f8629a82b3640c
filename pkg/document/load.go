package document

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/jingkaihe/agentdex/pkg/catalog"
)

// Load populates a catalog from a parsed document. Agents are merged from the
// index table and the cluster bullets, index table first; every problem is
// collected and returned rather than aborting on the first one.
func Load(cat *catalog.Catalog, doc *Document) []Issue {
	var issues []Issue

	merged := make(map[string]AgentEntry)
	var order []string

	absorb := func(entry AgentEntry, clusterName string) {
		prev, seen := merged[entry.ID]
		if !seen {
			merged[entry.ID] = entry
			order = append(order, entry.ID)
			return
		}
		if entry.Summary != "" && prev.Summary != "" && entry.Summary != prev.Summary {
			issues = append(issues, Issue{
				Kind:    IssueSummaryMismatch,
				Cluster: clusterName,
				AgentID: entry.ID,
				Message: fmt.Sprintf("agent '%s' summary differs between index table and cluster listing", entry.ID),
			})
		}
		if prev.Summary == "" {
			prev.Summary = entry.Summary
		}
		if prev.Path == "" {
			prev.Path = entry.Path
		}
		merged[entry.ID] = prev
	}

	for _, entry := range doc.Index {
		absorb(entry, "")
	}
	for _, cluster := range doc.Clusters {
		for _, member := range cluster.Members {
			absorb(member, cluster.Name)
		}
	}

	registered := make(map[string]bool, len(order))
	for _, id := range order {
		entry := merged[id]
		if err := cat.RegisterAgent(entry.ID, entry.Summary, entry.Path); err != nil {
			issues = append(issues, Issue{
				Kind:    IssueInvalidAgent,
				Fatal:   true,
				AgentID: entry.ID,
				Message: errors.Wrapf(err, "cannot register agent '%s'", entry.ID).Error(),
			})
			continue
		}
		registered[id] = true
	}

	for _, cluster := range doc.Clusters {
		if err := cat.CreateCluster(cluster.Name, cluster.Description); err != nil {
			issues = append(issues, Issue{
				Kind:    IssueDuplicateCluster,
				Fatal:   true,
				Cluster: cluster.Name,
				Message: errors.Wrapf(err, "cannot create cluster '%s'", cluster.Name).Error(),
			})
			continue
		}
		for _, member := range cluster.Members {
			if !registered[member.ID] {
				issues = append(issues, Issue{
					Kind:    IssueUnregisteredMember,
					Fatal:   true,
					Cluster: cluster.Name,
					AgentID: member.ID,
					Message: fmt.Sprintf("cluster '%s' member '%s' was never registered", cluster.Name, member.ID),
				})
				continue
			}
			if err := cat.AddMember(cluster.Name, member.ID); err != nil {
				issues = append(issues, Issue{
					Kind:    IssueUnregisteredMember,
					Fatal:   true,
					Cluster: cluster.Name,
					AgentID: member.ID,
					Message: errors.Wrapf(err, "cannot attach '%s' to cluster '%s'", member.ID, cluster.Name).Error(),
				})
			}
		}
	}

	return issues
}

// Import parses source and loads it into the catalog. All issues, fatal or
// not, are returned together; the error aggregates the fatal ones so the
// caller can fail the import while still presenting the full report.
func Import(cat *catalog.Catalog, source []byte) ([]Issue, error) {
	doc, issues := Parse(source)
	issues = append(issues, Load(cat, doc)...)

	var fatal *multierror.Error
	for _, issue := range issues {
		if issue.Fatal {
			fatal = multierror.Append(fatal, errors.New(issue.String()))
		}
	}
	return issues, fatal.ErrorOrNil()
}
