package document

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

type section int

const (
	sectionNone section = iota
	sectionClusters
	sectionIndex
	sectionOther
)

// Parse reads an index document into its structured shape. Malformed content
// is reported through the returned issues, never silently dropped; parsing
// always continues to the end of the document.
func Parse(source []byte) (*Document, []Issue) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(source))

	doc := &Document{}
	var issues []Issue

	sec := sectionNone
	var current *ClusterSection

	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			switch n.Level {
			case 1:
				doc.Title = nodeText(n, source)
			case 2:
				current = nil
				switch strings.ToLower(nodeText(n, source)) {
				case "clusters":
					sec = sectionClusters
				case "agent index":
					sec = sectionIndex
				default:
					sec = sectionOther
				}
			case 3:
				if sec != sectionClusters {
					continue
				}
				name := nodeText(n, source)
				if hasCluster(doc, name) {
					issues = append(issues, Issue{
						Kind:    IssueDuplicateCluster,
						Fatal:   true,
						Cluster: name,
						Message: fmt.Sprintf("cluster section '%s' appears more than once", name),
					})
					current = nil
					continue
				}
				doc.Clusters = append(doc.Clusters, ClusterSection{Name: name})
				current = &doc.Clusters[len(doc.Clusters)-1]
			}

		case *ast.Paragraph:
			if current != nil && current.Description == "" && len(current.Members) == 0 {
				current.Description = nodeText(n, source)
			}

		case *ast.List:
			if current == nil {
				continue
			}
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				entry, itemIssues := parseBullet(item, source, current.Name)
				issues = append(issues, itemIssues...)
				if entry == nil {
					continue
				}
				if memberIndex(current, entry.ID) >= 0 {
					issues = append(issues, Issue{
						Kind:    IssueDuplicateMember,
						Cluster: current.Name,
						AgentID: entry.ID,
						Message: fmt.Sprintf("cluster '%s' lists agent '%s' more than once", current.Name, entry.ID),
					})
					continue
				}
				current.Members = append(current.Members, *entry)
			}

		case *east.Table:
			if sec != sectionIndex {
				continue
			}
			for row := n.FirstChild(); row != nil; row = row.NextSibling() {
				if _, header := row.(*east.TableHeader); header {
					continue
				}
				entry, rowIssues := parseIndexRow(row, source)
				issues = append(issues, rowIssues...)
				if entry != nil {
					doc.Index = append(doc.Index, *entry)
				}
			}
		}
	}

	return doc, issues
}

// parseBullet extracts one `- [id](path) - summary` member entry.
func parseBullet(item ast.Node, source []byte, clusterName string) (*AgentEntry, []Issue) {
	link := findLink(item)
	if link == nil {
		return nil, []Issue{{
			Kind:    IssueMalformedBullet,
			Fatal:   true,
			Cluster: clusterName,
			Message: fmt.Sprintf("cluster '%s' bullet '%s' has no agent link", clusterName, excerpt(item, source)),
		}}
	}

	entry := &AgentEntry{
		ID:      strings.TrimSpace(nodeText(link, source)),
		Path:    string(link.Destination),
		Summary: trailingText(link, source),
	}

	var issues []Issue
	if entry.ID == "" {
		issues = append(issues, Issue{
			Kind:    IssueMissingID,
			Fatal:   true,
			Cluster: clusterName,
			Message: fmt.Sprintf("cluster '%s' bullet links to '%s' without an agent id", clusterName, entry.Path),
		})
		return nil, issues
	}
	if entry.Path == "" {
		issues = append(issues, Issue{
			Kind:    IssueMissingPath,
			Fatal:   true,
			Cluster: clusterName,
			AgentID: entry.ID,
			Message: fmt.Sprintf("agent '%s' in cluster '%s' has no document path", entry.ID, clusterName),
		})
	}
	return entry, issues
}

// parseIndexRow extracts one `| [id](path) | summary |` table row.
func parseIndexRow(row ast.Node, source []byte) (*AgentEntry, []Issue) {
	first := row.FirstChild()
	if first == nil {
		return nil, nil
	}

	entry := &AgentEntry{}
	if link := findLink(first); link != nil {
		entry.ID = strings.TrimSpace(nodeText(link, source))
		entry.Path = string(link.Destination)
	} else {
		entry.ID = strings.TrimSpace(nodeText(first, source))
	}
	if second := first.NextSibling(); second != nil {
		entry.Summary = strings.TrimSpace(nodeText(second, source))
	}

	var issues []Issue
	if entry.ID == "" {
		return nil, []Issue{{
			Kind:    IssueMissingID,
			Fatal:   true,
			Message: "agent index row has no agent id",
		}}
	}
	if entry.Path == "" {
		issues = append(issues, Issue{
			Kind:    IssueMissingPath,
			Fatal:   true,
			AgentID: entry.ID,
			Message: fmt.Sprintf("agent index row '%s' has no document path", entry.ID),
		})
	}
	return entry, issues
}

// trailingText collects the inline text following a link and strips the
// conventional ` - ` separator.
func trailingText(link ast.Node, source []byte) string {
	var sb strings.Builder
	for sibling := link.NextSibling(); sibling != nil; sibling = sibling.NextSibling() {
		sb.WriteString(nodeText(sibling, source))
	}
	out := strings.TrimSpace(sb.String())
	out = strings.TrimPrefix(out, "-")
	return strings.TrimSpace(out)
}

func findLink(n ast.Node) *ast.Link {
	if link, ok := n.(*ast.Link); ok {
		return link
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if link := findLink(child); link != nil {
			return link
		}
	}
	return nil
}

// nodeText collects the plain text content of a node and its descendants.
func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	var walk func(ast.Node)
	walk = func(node ast.Node) {
		switch t := node.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
		case *ast.String:
			sb.Write(t.Value)
		default:
			for child := node.FirstChild(); child != nil; child = child.NextSibling() {
				walk(child)
			}
		}
	}
	walk(n)
	return sb.String()
}

func excerpt(n ast.Node, source []byte) string {
	text := nodeText(n, source)
	if len(text) > 60 {
		return text[:60] + "..."
	}
	return text
}

func hasCluster(doc *Document, name string) bool {
	for i := range doc.Clusters {
		if doc.Clusters[i].Name == name {
			return true
		}
	}
	return false
}

func memberIndex(cluster *ClusterSection, id string) int {
	for i := range cluster.Members {
		if cluster.Members[i].ID == id {
			return i
		}
	}
	return -1
}
