package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/agentdex/pkg/catalog"
)

const sampleDoc = `# Agent Clusters

Some introductory prose that the parser ignores.

## Clusters

### Architecture & System Design

Use when designing new systems or reviewing architecture decisions.

- [cloud-architect](personas/cloud-architect.md) - Designs cloud infrastructure
- [api-designer](personas/api-designer.md) - Designs REST and RPC APIs

### Infrastructure & DevOps

Use for deployment, orchestration, and operational work.

- [cloud-architect](personas/cloud-architect.md) - Designs cloud infrastructure
- [kubernetes-specialist](personas/kubernetes-specialist.md) - Operates Kubernetes clusters

## Agent Index

| Agent | Summary |
|-------|---------|
| [cloud-architect](personas/cloud-architect.md) | Designs cloud infrastructure |
| [api-designer](personas/api-designer.md) | Designs REST and RPC APIs |
| [kubernetes-specialist](personas/kubernetes-specialist.md) | Operates Kubernetes clusters |

## Statistics

- Total agents: 3
- Total clusters: 2
- Agents with multiple clusters: 1
`

func TestParse_WellFormed(t *testing.T) {
	doc, issues := Parse([]byte(sampleDoc))
	assert.Empty(t, issues)

	assert.Equal(t, "Agent Clusters", doc.Title)
	require.Len(t, doc.Clusters, 2)

	arch := doc.Clusters[0]
	assert.Equal(t, "Architecture & System Design", arch.Name)
	assert.Equal(t, "Use when designing new systems or reviewing architecture decisions.", arch.Description)
	require.Len(t, arch.Members, 2)
	assert.Equal(t, AgentEntry{
		ID:      "cloud-architect",
		Path:    "personas/cloud-architect.md",
		Summary: "Designs cloud infrastructure",
	}, arch.Members[0])

	require.Len(t, doc.Index, 3)
	assert.Equal(t, "kubernetes-specialist", doc.Index[2].ID)
	assert.Equal(t, "Operates Kubernetes clusters", doc.Index[2].Summary)
}

func TestParse_CollectsAllIssues(t *testing.T) {
	src := `# Agent Clusters

## Clusters

### Broken Cluster

Description here.

- just prose, no link at all
- [](personas/anonymous.md) - link with no id
- [pathless-agent]() - link with no destination
- [ok-agent](personas/ok-agent.md) - this one is fine
`
	doc, issues := Parse([]byte(src))

	kinds := make(map[IssueKind]int)
	for _, issue := range issues {
		kinds[issue.Kind]++
	}
	assert.Equal(t, 1, kinds[IssueMalformedBullet])
	assert.Equal(t, 1, kinds[IssueMissingID])
	assert.Equal(t, 1, kinds[IssueMissingPath])

	// The pathless agent is still reported as a member; only the id-less
	// bullet is dropped from the member list.
	require.Len(t, doc.Clusters, 1)
	require.Len(t, doc.Clusters[0].Members, 2)
	assert.Equal(t, "pathless-agent", doc.Clusters[0].Members[0].ID)
	assert.Equal(t, "ok-agent", doc.Clusters[0].Members[1].ID)
}

func TestParse_DuplicateMemberAndCluster(t *testing.T) {
	src := `# Agent Clusters

## Clusters

### Repeated Cluster

- [agent-a](a.md) - summary a
- [agent-a](a.md) - summary a

### Repeated Cluster

- [agent-b](b.md) - summary b
`
	doc, issues := Parse([]byte(src))

	kinds := make(map[IssueKind]int)
	for _, issue := range issues {
		kinds[issue.Kind]++
	}
	assert.Equal(t, 1, kinds[IssueDuplicateMember])
	assert.Equal(t, 1, kinds[IssueDuplicateCluster])

	require.Len(t, doc.Clusters, 1)
	assert.Len(t, doc.Clusters[0].Members, 1)
}

func TestLoad_PopulatesCatalog(t *testing.T) {
	doc, issues := Parse([]byte(sampleDoc))
	require.Empty(t, issues)

	cat := catalog.New()
	issues = Load(cat, doc)
	assert.Empty(t, issues)

	assert.Equal(t, 3, cat.AgentCount())
	assert.Equal(t, 2, cat.ClusterCount())

	members, err := cat.MembersOf("Infrastructure & DevOps")
	require.NoError(t, err)
	assert.Equal(t, []string{"cloud-architect", "kubernetes-specialist"}, members)

	assert.True(t, cat.IsCrossCluster("cloud-architect"))
	assert.False(t, cat.IsCrossCluster("api-designer"))
}

func TestLoad_SummaryMismatch(t *testing.T) {
	src := `# Agent Clusters

## Clusters

### Some Cluster

- [drifting-agent](drift.md) - summary from the bullet

## Agent Index

| Agent | Summary |
|-------|---------|
| [drifting-agent](drift.md) | summary from the table |
`
	cat := catalog.New()
	issues, err := Import(cat, []byte(src))
	assert.NoError(t, err, "summary mismatch is a warning, not a failure")

	require.Len(t, issues, 1)
	assert.Equal(t, IssueSummaryMismatch, issues[0].Kind)
	assert.False(t, issues[0].Fatal)

	// The index table wins because it is absorbed first.
	rec, err := cat.GetAgent("drifting-agent")
	require.NoError(t, err)
	assert.Equal(t, "summary from the table", rec.Summary)
}

func TestImport_AggregatesFatalIssues(t *testing.T) {
	src := `# Agent Clusters

## Clusters

### Cluster One

- first broken bullet without a link
- second broken bullet without a link
- [good-agent](good.md) - a good agent
`
	cat := catalog.New()
	issues, err := Import(cat, []byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 errors occurred")
	assert.Len(t, issues, 2)

	// The importable parts still land in the catalog.
	_, getErr := cat.GetAgent("good-agent")
	assert.NoError(t, getErr)
}

func TestRoundTrip(t *testing.T) {
	cat := catalog.New()
	issues, err := Import(cat, []byte(sampleDoc))
	require.NoError(t, err)
	require.Empty(t, issues)

	rendered := Render(cat)

	reimported := catalog.New()
	issues, err = Import(reimported, rendered)
	require.NoError(t, err)
	require.Empty(t, issues)

	assert.Equal(t, cat.Snapshot(), reimported.Snapshot(),
		"export(import(doc)) preserves agents, clusters, and memberships")
}

func TestRender_StatisticsBlock(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, cat.RegisterAgent("agent-a", "summary a", "a.md"))
	require.NoError(t, cat.RegisterAgent("agent-b", "summary b", "b.md"))
	require.NoError(t, cat.CreateCluster("Tied One", "first"))
	require.NoError(t, cat.CreateCluster("Tied Two", "second"))
	require.NoError(t, cat.AddMember("Tied One", "agent-a"))
	require.NoError(t, cat.AddMember("Tied Two", "agent-b"))

	out := string(Render(cat))
	assert.Contains(t, out, "- Total agents: 2")
	assert.Contains(t, out, "- Total clusters: 2")
	assert.Contains(t, out, "- Agents with multiple clusters: 0")
	assert.Contains(t, out, "- Smallest clusters: Tied One (1), Tied Two (1)")
}
