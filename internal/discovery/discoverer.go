// Package discovery finds test files under the open project roots and builds
// their nodes, parsing a file's children only when they are asked for.
package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"ptx/internal/config"
	"ptx/internal/domain"
	"ptx/internal/tree"
	"ptx/internal/workspace"
)

// Discoverer maintains the file nodes of one framework
type Discoverer struct {
	framework string
	ws        *workspace.Workspace
	tree      *tree.Tree
	scanner   *Scanner
	roots     *RootFilter
	source    SourceParser
	logger    zerolog.Logger
}

// NewDiscoverer creates a Discoverer for the framework's configuration
func NewDiscoverer(
	framework string,
	cfg config.Framework,
	ws *workspace.Workspace,
	tr *tree.Tree,
	source SourceParser,
	logger zerolog.Logger,
) (*Discoverer, error) {
	roots, err := NewRootFilter(cfg.Roots)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid root allow-list: %w", framework, err)
	}
	return &Discoverer{
		framework: framework,
		ws:        ws,
		tree:      tr,
		scanner:   NewScanner(cfg.Pattern, cfg.ExcludeGlobs()),
		roots:     roots,
		source:    source,
		logger:    logger,
	}, nil
}

// Discover scans every allowed root and adds a node for each new file.
// Names narrow the configured allow-list further. Existing nodes, parsed or
// not, are left untouched.
func (d *Discoverer) Discover(ctx context.Context, names ...string) error {
	narrow, err := NewRootFilter(names)
	if err != nil {
		return fmt.Errorf("invalid root filter: %w", err)
	}

	for _, root := range d.ws.Roots() {
		if !d.roots.Allows(root.Name) || !narrow.Allows(root.Name) {
			d.logger.Debug().Str("root", root.Name).Msg("root filtered out")
			continue
		}

		files, err := d.scanner.Scan(ctx, root.Path)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger.Warn().Err(err).Str("root", root.Name).Msg("scan failed")
			continue
		}

		added := 0
		for _, path := range files {
			// Files of a nested root are attributed when that root is scanned
			if owner, ok := d.ws.OwnerOf(path); !ok || owner.Name != root.Name {
				continue
			}
			if _, ok := d.addFile(path); ok {
				added++
			}
		}
		d.logger.Debug().Str("root", root.Name).Int("files", len(files)).Int("added", added).Msg("discovered")
	}
	return nil
}

// Refresh discards the whole tree and discovers from scratch
func (d *Discoverer) Refresh(ctx context.Context) error {
	d.tree.Clear()
	return d.Discover(ctx)
}

// Admit applies the discovery rules to a single file
func (d *Discoverer) Admit(path string) bool {
	owner, ok := d.ws.OwnerOf(path)
	if !ok || !d.roots.Allows(owner.Name) {
		return false
	}
	return d.scanner.Matches(d.ws.RelativeTo(path))
}

// AddFile admits path and adds its node. It returns the node and whether it
// was newly added.
func (d *Discoverer) AddFile(path string) (*tree.Node, bool) {
	path = filepath.Clean(path)
	if !d.Admit(path) {
		return nil, false
	}
	return d.addFile(path)
}

func (d *Discoverer) addFile(path string) (*tree.Node, bool) {
	n := tree.NewNode(path, filepath.Base(path), domain.KindFile, domain.Location{Path: path, Line: 1})
	n.Framework = d.framework
	n.CanResolveChildren = true
	return d.tree.Add(n)
}

// Resolve (re)parses a file node and replaces its children wholesale.
// Unreadable files end up with zero children.
func (d *Discoverer) Resolve(file *tree.Node) {
	if file == nil || file.Kind != domain.KindFile {
		return
	}

	content, err := os.ReadFile(file.Location.Path)
	if err != nil {
		d.logger.Warn().Err(err).Str("file", file.ID).Msg("cannot read test file, no children")
		file.ReplaceChildren(nil)
		return
	}

	items := d.source.Parse(string(content))
	if len(items) == 0 {
		d.logger.Debug().Str("file", file.ID).Msg("no tests recognised")
	}
	file.ReplaceChildren(d.buildNodes(file, items))
}

func (d *Discoverer) buildNodes(parent *tree.Node, items []domain.TestItem) []*tree.Node {
	nodes := make([]*tree.Node, 0, len(items))
	for _, item := range items {
		n := tree.NewNode(parent.ChildID(item.Name), item.Name, item.Kind, domain.Location{
			Path: parent.Location.Path,
			Line: item.Line,
		})
		n.Framework = d.framework
		if item.Kind == domain.KindClass {
			n.ReplaceChildren(d.buildNodes(n, item.Children))
		}
		nodes = append(nodes, n)
	}
	return nodes
}
