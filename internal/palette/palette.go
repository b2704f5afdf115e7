// Package palette builds the JavaScript command tree offered to the host.
//
// The root context node resolves, per query, to an init leaf when the
// project has no manifest, or to the scripts, install and uninstall groups
// when it does. Every resolver reads the live manifest snapshot at
// resolution time, so the tree follows the file as it changes.
//
// Leaves detect the package manager again when they run rather than
// trusting the manager seen at resolution time: the lockfile may have
// changed in between.
package palette

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jpl-au/pkgpal/internal/command"
	"github.com/jpl-au/pkgpal/internal/fsys"
	"github.com/jpl-au/pkgpal/internal/manifest"
	"github.com/jpl-au/pkgpal/internal/pkgmgr"
	"github.com/jpl-au/pkgpal/internal/registry"
)

// Icon identifiers passed through to the host unresolved.
const (
	IconJavaScript = "icons/javascript.png"
	IconNPM        = "icons/npm.svg"
	IconDownload   = "icons/download.png"
	IconTrash      = "icons/trash.png"
)

// RootID identifies the root node to the host.
const RootID = "javascript-root-command"

// Section IDs.
const (
	ScriptsID   = "javascript-scripts"
	InstallID   = "javascript-install"
	UninstallID = "javascript-uninstall"
)

// Searcher looks up registry packages matching a term.
type Searcher interface {
	Lookup(ctx context.Context, term string) ([]registry.Package, error)
}

// Executor runs a shell command string.
type Executor interface {
	Exec(ctx context.Context, command string) error
}

// Execution describes one command run by a leaf.
type Execution struct {
	RunID    string // from WithRunID, empty when the caller set none
	Label    string
	Command  string
	Manager  pkgmgr.Kind
	Started  time.Time
	Duration time.Duration
	Err      error
}

type runIDKey struct{}

// WithRunID tags leaf executions started with ctx so observers can
// correlate them with the caller's own records.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

func runID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Options configures a Provider. Manifest, Files, Search and Shell are
// required.
type Options struct {
	Manifest manifest.Source
	Files    fsys.Reader
	Search   Searcher
	Shell    Executor

	// ManifestName is shown in descriptions. Defaults to package.json.
	ManifestName string

	// Manager pins the package manager instead of detecting it.
	Manager *pkgmgr.Kind

	// Observer, if set, is called after every leaf execution.
	Observer func(Execution)
}

var errMissingOption = errors.New("palette: missing required option")

// Provider builds the command tree.
type Provider struct {
	opts   Options
	latest atomic.Uint64
}

// New validates opts and returns a provider.
func New(opts Options) (*Provider, error) {
	switch {
	case opts.Manifest == nil:
		return nil, fmt.Errorf("%w: Manifest", errMissingOption)
	case opts.Files == nil:
		return nil, fmt.Errorf("%w: Files", errMissingOption)
	case opts.Search == nil:
		return nil, fmt.Errorf("%w: Search", errMissingOption)
	case opts.Shell == nil:
		return nil, fmt.Errorf("%w: Shell", errMissingOption)
	}
	if opts.ManifestName == "" {
		opts.ManifestName = manifest.DefaultName
	}
	return &Provider{opts: opts}, nil
}

// NewQuery returns a query carrying a fresh token. Issuing it makes every
// earlier token stale.
func (p *Provider) NewQuery(active bool, search string) command.Query {
	return command.Query{Active: active, Search: search, Token: p.latest.Add(1)}
}

// Untracked returns a query that never goes stale. Use it to resolve a path
// that will be acted on, such as a run, rather than a palette view that a
// newer query replaces.
func Untracked(active bool, search string) command.Query {
	return command.Query{Active: active, Search: search}
}

// Current reports whether token belongs to the most recent query. The zero
// token is never stale.
func (p *Provider) Current(token uint64) bool {
	return token == 0 || token == p.latest.Load()
}

// Manager returns the package manager commands would use now.
func (p *Provider) Manager(ctx context.Context) pkgmgr.Kind {
	if p.opts.Manager != nil {
		return *p.opts.Manager
	}
	return pkgmgr.Detect(ctx, p.opts.Files)
}

// Root returns the root context node.
func (p *Provider) Root() *command.Node {
	return command.NewContext(command.Metadata{
		ID:          RootID,
		Label:       "JS",
		Description: "Javascript commands",
		Icon:        IconJavaScript,
	}, p.resolveRoot)
}

func (p *Provider) resolveRoot(ctx context.Context, q command.Query) ([]*command.Node, error) {
	if !q.Active && q.Search == "" {
		return p.finish(q, nil)
	}

	if !p.opts.Manifest.Snapshot().Exists {
		mgr := p.Manager(ctx)
		initLeaf := p.leaf(command.Metadata{
			Label:       mgr.Init(),
			Description: "initialise " + p.opts.ManifestName + " in this project",
			Icon:        IconNPM,
		}, pkgmgr.Kind.Init)
		return p.finish(q, []*command.Node{initLeaf})
	}

	return p.finish(q, []*command.Node{
		command.NewContext(command.Metadata{
			ID:          ScriptsID,
			Label:       "scripts",
			Description: "run scripts in " + p.opts.ManifestName,
			Icon:        IconNPM,
		}, p.resolveScripts),
		command.NewContext(command.Metadata{
			ID:          InstallID,
			Label:       "install",
			Description: "install a package from the npm registry",
			Icon:        IconDownload,
		}, p.resolveInstall),
		command.NewContext(command.Metadata{
			ID:          UninstallID,
			Label:       "uninstall",
			Description: "uninstall an installed package",
			Icon:        IconTrash,
		}, p.resolveUninstall),
	})
}

// resolveScripts lists the declared scripts. It does not depend on Active.
func (p *Provider) resolveScripts(_ context.Context, q command.Query) ([]*command.Node, error) {
	snap := p.opts.Manifest.Snapshot()
	if !snap.Exists {
		return p.finish(q, nil)
	}
	if snap.Err != nil {
		return nil, snap.Err
	}

	nodes := make([]*command.Node, 0, len(snap.Manifest.Scripts))
	for _, s := range snap.Manifest.Scripts {
		nodes = append(nodes, p.leaf(command.Metadata{
			Label:       s.Name,
			Description: s.Value,
			Icon:        IconNPM,
		}, func(k pkgmgr.Kind) string { return k.Run(s.Name) }))
	}
	return p.finish(q, nodes)
}

func (p *Provider) resolveInstall(ctx context.Context, q command.Query) ([]*command.Node, error) {
	if !q.Active {
		return p.finish(q, nil)
	}

	pkgs, err := p.opts.Search.Lookup(ctx, q.Search)
	if err != nil {
		return nil, err
	}

	nodes := make([]*command.Node, 0, len(pkgs))
	for _, pkg := range pkgs {
		nodes = append(nodes, p.leaf(command.Metadata{
			Label:       pkg.Name,
			Description: pkg.Description,
		}, func(k pkgmgr.Kind) string { return k.Install(pkg.Name) }))
	}
	return p.finish(q, nodes)
}

// resolveUninstall lists dependencies. When inactive it returns before
// touching the manifest.
func (p *Provider) resolveUninstall(_ context.Context, q command.Query) ([]*command.Node, error) {
	if !q.Active {
		return p.finish(q, nil)
	}

	snap := p.opts.Manifest.Snapshot()
	if !snap.Exists {
		return p.finish(q, nil)
	}
	if snap.Err != nil {
		return nil, snap.Err
	}

	nodes := make([]*command.Node, 0, len(snap.Manifest.Dependencies))
	for _, d := range snap.Manifest.Dependencies {
		nodes = append(nodes, p.leaf(command.Metadata{
			Label:       d.Name,
			Description: d.Value,
			Icon:        IconTrash,
		}, func(k pkgmgr.Kind) string { return k.Uninstall(d.Name) }))
	}
	return p.finish(q, nodes)
}

// finish returns nodes unless q has been superseded. Nil becomes an empty
// list so hosts always receive an array.
func (p *Provider) finish(q command.Query, nodes []*command.Node) ([]*command.Node, error) {
	if !p.Current(q.Token) {
		return nil, command.ErrStale
	}
	if nodes == nil {
		nodes = []*command.Node{}
	}
	return nodes, nil
}

// leaf builds a node whose action detects the manager, builds the command
// with build and runs it.
func (p *Provider) leaf(meta command.Metadata, build func(pkgmgr.Kind) string) *command.Node {
	return command.NewLeaf(meta, func(ctx context.Context) error {
		mgr := p.Manager(ctx)
		line := build(mgr)

		start := time.Now()
		err := p.opts.Shell.Exec(ctx, line)
		if p.opts.Observer != nil {
			p.opts.Observer(Execution{
				RunID:    runID(ctx),
				Label:    meta.Label,
				Command:  line,
				Manager:  mgr,
				Started:  start,
				Duration: time.Since(start),
				Err:      err,
			})
		}
		return err
	})
}
