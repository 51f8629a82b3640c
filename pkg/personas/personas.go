// Package personas discovers agent persona documents on disk. A persona is a
// markdown file whose id derives from the filename and whose one-line summary
// comes from YAML frontmatter, falling back to the first top-level heading.
package personas

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/jingkaihe/agentdex/pkg/logger"
)

// Persona is one discovered persona document, ready for catalog registration.
type Persona struct {
	ID      string
	Summary string
	Path    string
}

// Discovery scans configured directories for persona markdown files.
type Discovery struct {
	dirs    []string
	pattern string
}

// Option configures a Discovery.
type Option func(*Discovery) error

// WithDirs sets custom persona directories.
func WithDirs(dirs ...string) Option {
	return func(d *Discovery) error {
		if len(dirs) == 0 {
			return errors.New("at least one persona directory must be specified")
		}
		d.dirs = dirs
		return nil
	}
}

// WithDefaultDirs sets the default persona directories (./personas,
// ~/.agentdex/personas). The repository-local directory takes precedence.
func WithDefaultDirs() Option {
	return func(d *Discovery) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}
		d.dirs = []string{
			"./personas",
			filepath.Join(homeDir, ".agentdex", "personas"),
		}
		return nil
	}
}

// WithPattern sets the glob pattern matched against paths relative to each
// persona directory. Defaults to "**/*.md".
func WithPattern(pattern string) Option {
	return func(d *Discovery) error {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid glob pattern '%s'", pattern)
		}
		d.pattern = pattern
		return nil
	}
}

// NewDiscovery creates a persona discovery instance.
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{pattern: "**/*.md"}

	if len(opts) == 0 {
		if err := WithDefaultDirs()(d); err != nil {
			return nil, err
		}
		return d, nil
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	if len(d.dirs) == 0 {
		if err := WithDefaultDirs()(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Discover returns all personas from the configured directories in walk
// order. Earlier directories win on id collisions; unreadable files and
// files without a usable summary are logged and skipped, never fatal.
func (d *Discovery) Discover(ctx context.Context) ([]Persona, error) {
	var personas []Persona
	seen := make(map[string]bool)

	for _, dir := range d.dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return nil
			}
			if ok, _ := doublestar.Match(d.pattern, filepath.ToSlash(rel)); !ok {
				return nil
			}

			persona, err := d.load(path)
			if err != nil {
				logger.G(ctx).WithField("path", path).WithError(err).Warn("Failed to load persona, skipping")
				return nil
			}
			if seen[persona.ID] {
				logger.G(ctx).WithField("id", persona.ID).Debug("Persona already discovered, skipping")
				return nil
			}

			personas = append(personas, *persona)
			seen[persona.ID] = true
			return nil
		})
		if err != nil {
			logger.G(ctx).WithField("dir", dir).Debug("Persona directory not found, skipping")
		}
	}

	logger.G(ctx).WithField("count", len(personas)).Info("Discovered personas")
	return personas, nil
}

// load reads one persona file and derives its id and summary.
func (d *Discovery) load(path string) (*Persona, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read persona file '%s'", path)
	}

	id, summary := parseMetadata(content)
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(path), ".md")
	}
	if summary == "" {
		summary = firstHeading(content)
	}
	if summary == "" {
		return nil, errors.Errorf("persona '%s' has no description frontmatter and no heading", path)
	}

	return &Persona{ID: id, Summary: summary, Path: path}, nil
}

// parseMetadata extracts the name and description from YAML frontmatter.
func parseMetadata(content []byte) (name, description string) {
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return "", ""
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return "", ""
	}
	if v, ok := metaData["name"].(string); ok {
		name = v
	}
	if v, ok := metaData["description"].(string); ok {
		description = v
	}
	return name, description
}

// firstHeading returns the text of the first top-level markdown heading.
func firstHeading(content []byte) string {
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
	}
	return ""
}
