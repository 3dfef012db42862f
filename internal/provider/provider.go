// Package provider is the engine shared by every framework: it owns one
// framework's tree, keeps it in sync with the file system and runs its nodes.
package provider

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ptx/internal/config"
	"ptx/internal/discovery"
	"ptx/internal/execution"
	"ptx/internal/framework"
	"ptx/internal/logging"
	"ptx/internal/tree"
	"ptx/internal/workspace"
)

// Provider drives one framework
type Provider struct {
	fw         framework.Framework
	ws         *workspace.Workspace
	tree       *tree.Tree
	discoverer *discovery.Discoverer
	executor   execution.Executor
	source     config.Source
	filter     *discovery.Filter
	logger     zerolog.Logger

	mu       sync.Mutex
	settings config.Framework
}

// New creates a Provider for fw. cfg supplies the discovery settings; run
// settings are taken from source at the start of every run.
func New(
	fw framework.Framework,
	cfg *config.Config,
	source config.Source,
	ws *workspace.Workspace,
	logger zerolog.Logger,
) (*Provider, error) {
	settings := fw.Settings(cfg)
	tr := tree.New()

	disc, err := discovery.NewDiscoverer(fw.Name, settings, ws, tr, fw.Source,
		logging.For(logger, "discovery").With().Str("framework", fw.Name).Logger())
	if err != nil {
		return nil, err
	}

	runtime := execution.NewContainerRuntime(cfg.ContainerRuntime, logging.For(logger, "container"))
	runner := execution.NewRunner(fw, ws, disc, runtime,
		logging.For(logger, "runner").With().Str("framework", fw.Name).Logger())

	return &Provider{
		fw:         fw,
		ws:         ws,
		tree:       tr,
		discoverer: disc,
		executor:   runner,
		source:     source,
		settings:   settings,
		filter:     discovery.NewFilter(),
		logger:     logging.For(logger, "provider").With().Str("framework", fw.Name).Logger(),
	}, nil
}

// NewAll creates a Provider for every enabled framework
func NewAll(cfg *config.Config, source config.Source, ws *workspace.Workspace, logger zerolog.Logger) ([]*Provider, error) {
	var providers []*Provider
	for _, fw := range framework.All() {
		if !fw.Settings(cfg).Enabled {
			continue
		}
		p, err := New(fw, cfg, source, ws, logger)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

// Name returns the framework name
func (p *Provider) Name() string {
	return p.fw.Name
}

// Tree returns the framework's test tree
func (p *Provider) Tree() *tree.Tree {
	return p.tree
}

// Discover adds nodes for every test file under the allowed roots
func (p *Provider) Discover(ctx context.Context, roots ...string) error {
	return p.discoverer.Discover(ctx, roots...)
}

// Refresh discards the tree and discovers again
func (p *Provider) Refresh(ctx context.Context) error {
	return p.discoverer.Refresh(ctx)
}

// Resolve parses a file node's children
func (p *Provider) Resolve(file *tree.Node) {
	p.discoverer.Resolve(file)
}

// Lookup finds a node by identity, parsing its file when needed
func (p *Provider) Lookup(id string) (*tree.Node, bool) {
	fileID := id
	if i := strings.Index(id, tree.IDSeparator); i >= 0 {
		fileID = id[:i]
	}
	file, ok := p.tree.File(fileID)
	if !ok {
		return nil, false
	}
	if fileID != id && !file.Parsed() {
		p.discoverer.Resolve(file)
	}
	return p.tree.Lookup(id)
}

// Select returns the nodes named by args, which are node identities or
// paths relative to the working directory. With no args every file matching
// nameFilter is selected. Args this provider does not know are returned.
func (p *Provider) Select(args []string, nameFilter string) ([]*tree.Node, []string) {
	if len(args) == 0 {
		return p.filter.FilterByName(p.tree.Files(), nameFilter), nil
	}

	var nodes, dirs []*tree.Node
	var unknown []string
	for _, arg := range args {
		id := absID(arg)
		if n, ok := p.Lookup(id); ok {
			nodes = append(nodes, n)
			continue
		}
		if under := p.filesUnder(id); len(under) > 0 {
			dirs = append(dirs, under...)
			continue
		}
		unknown = append(unknown, arg)
	}
	nodes = append(nodes, dirs...)
	return p.filter.FilterByName(nodes, nameFilter), unknown
}

func (p *Provider) filesUnder(dir string) []*tree.Node {
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	var files []*tree.Node
	for _, f := range p.tree.Files() {
		if strings.HasPrefix(f.ID, prefix) {
			files = append(files, f)
		}
	}
	return files
}

// Run executes nodes sequentially as one batch and returns the ended run
func (p *Provider) Run(ctx context.Context, nodes []*tree.Node, observers ...tree.Observer) *tree.Run {
	run := tree.NewRun(uuid.NewString(), p.fw.Name, observers...)
	defer run.End()

	settings := p.currentSettings()
	p.logger.Info().
		Str("run", run.ID).
		Int("nodes", len(nodes)).
		Bool("container", settings.UseContainer).
		Msg("starting run")

	p.executor.Execute(ctx, run, settings, nodes)
	return run
}

// currentSettings reads the run settings fresh, keeping the last good ones
// when the configuration cannot be loaded.
func (p *Provider) currentSettings() config.Framework {
	var cfg *config.Config
	var err error
	if p.source != nil {
		cfg, err = p.source.Current()
	}
	if cfg == nil {
		if err != nil {
			p.logger.Warn().Err(err).Msg("cannot reload configuration, using previous settings")
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.settings
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings = p.fw.Settings(cfg)
	return p.settings
}

// Created implements watcher.Handler. A create event for a known file is a
// rename over it, as editors do on atomic save, so a parsed node is re-parsed.
func (p *Provider) Created(path string) {
	n, added := p.discoverer.AddFile(path)
	switch {
	case added:
		p.logger.Debug().Str("file", n.ID).Msg("test file added")
	case n != nil && n.Parsed():
		p.Changed(path)
	}
}

// Changed implements watcher.Handler
func (p *Provider) Changed(path string) {
	if n, ok := p.tree.File(filepath.Clean(path)); ok {
		p.discoverer.Resolve(n)
		p.logger.Debug().Str("file", n.ID).Int("children", len(n.Children())).Msg("test file re-parsed")
	}
}

// Deleted implements watcher.Handler
func (p *Provider) Deleted(path string) {
	path = filepath.Clean(path)
	if p.tree.Remove(path) {
		p.logger.Debug().Str("file", path).Msg("test file removed")
		return
	}
	if removed := p.tree.RemoveUnder(path); len(removed) > 0 {
		p.logger.Debug().Str("dir", path).Int("files", len(removed)).Msg("test files removed")
	}
}

// String implements fmt.Stringer
func (p *Provider) String() string {
	return fmt.Sprintf("%s (%d files)", p.fw.Name, p.tree.Len())
}

// absID makes the file part of an identity absolute
func absID(arg string) string {
	file, rest := arg, ""
	if i := strings.Index(arg, tree.IDSeparator); i >= 0 {
		file, rest = arg[:i], arg[i:]
	}
	if abs, err := filepath.Abs(file); err == nil {
		file = abs
	}
	return file + rest
}
