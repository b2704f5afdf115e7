/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// init_extensions.go builds the project workspace and injects it into
// extensions.
//
// Extensions register during init() but aren't initialised until first
// command execution. This two-phase pattern allows extensions to declare
// commands before the project directory is known. The workspace is created
// once and shared across all extensions via the Context.

package cmd

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/jpl-au/pkgpal/extension"
	"github.com/jpl-au/pkgpal/internal/cache"
	"github.com/jpl-au/pkgpal/internal/config"
	"github.com/jpl-au/pkgpal/internal/diff"
	"github.com/jpl-au/pkgpal/internal/fsys"
	"github.com/jpl-au/pkgpal/internal/log"
	"github.com/jpl-au/pkgpal/internal/manifest"
	"github.com/jpl-au/pkgpal/internal/palette"
	"github.com/jpl-au/pkgpal/internal/registry"
	"github.com/jpl-au/pkgpal/internal/shell"
)

// noWorkspaceCommands lists commands that bypass workspace construction.
var noWorkspaceCommands map[string]bool

// buildNoWorkspaceCommands creates the set of commands that skip workspace
// construction: cobra's own helpers plus extension-declared standalone
// commands.
func buildNoWorkspaceCommands() map[string]bool {
	cmds := map[string]bool{
		"help":       true,
		"completion": true,
	}
	for _, ext := range extension.All() {
		if s, ok := ext.(extension.Standalone); ok {
			for _, name := range s.NoWorkspaceCommands() {
				cmds[name] = true
			}
		}
	}
	return cmds
}

// Global extension context, created during initialisation.
var (
	extContext  extension.Context
	watcher     *manifest.Watcher
	unsubscribe func()
	initOnce    sync.Once
	initErr     error
)

// initExtensions builds the workspace and injects it into extensions.
//
// sync.Once guarantees one watcher per process: the manifest subscription
// and its fsnotify handles are shared by every extension.
func initExtensions() error {
	initOnce.Do(func() {
		ws, err := buildWorkspace()
		if err != nil {
			initErr = err
			return
		}
		extContext = extension.NewContext(ws)

		for _, ext := range extension.All() {
			if init, ok := ext.(extension.Initializable); ok {
				if err := init.Init(extContext); err != nil {
					initErr = fmt.Errorf("init extension %s: %w", ext.Name(), err)
					return
				}
			}
		}
	})
	return initErr
}

// buildWorkspace assembles the palette for the project directory. The
// manifest watcher delivers its initial state before Start returns, so the
// palette is usable as soon as this does.
func buildWorkspace() (extension.Workspace, error) {
	project, err := Dir()
	if err != nil {
		return extension.Workspace{}, err
	}
	log.SetProject(project)

	cfg, err := config.Load(project)
	if err != nil {
		return extension.Workspace{}, err
	}
	pinned, err := Manager()
	if err != nil {
		return extension.Workspace{}, err
	}
	if pinned == nil {
		pinned = cfg.PinnedManager()
	}

	files := fsys.NewOS(project)
	watcher = manifest.NewWatcher(files, ".", cfg.ManifestName())
	if err := watcher.Start(); err != nil {
		return extension.Workspace{}, err
	}

	rate := cfg.RegistryRate()
	if rate == 0 {
		rate = -1 // unlimited
	}
	client := registry.New(registry.Config{
		BaseURL: cfg.RegistryURL(),
		Timeout: cfg.RegistryTimeout(),
		Rate:    rate,
	})
	pkgs := cache.New(client.Search)
	sh := shell.New(project)

	p, err := palette.New(palette.Options{
		Manifest:     watcher,
		Files:        files,
		Search:       pkgs,
		Shell:        sh,
		ManifestName: cfg.ManifestName(),
		Manager:      pinned,
		Observer:     onExecution,
	})
	if err != nil {
		return extension.Workspace{}, err
	}
	unsubscribe = watcher.Subscribe(onManifestChange)

	slog.Debug("workspace ready",
		"dir", project,
		"manifest", cfg.ManifestName(),
		"exists", watcher.Snapshot().Exists,
		"registry", client.BaseURL())

	return extension.Workspace{
		Dir:      project,
		Config:   cfg,
		Provider: p,
		Manifest: watcher,
		Packages: pkgs,
		Registry: client,
		Shell:    sh,
	}, nil
}

func onExecution(e palette.Execution) {
	extension.Fire(extContext, extension.CommandRunEvent{
		RunID:    e.RunID,
		Label:    e.Label,
		Command:  e.Command,
		Manager:  e.Manager.String(),
		Started:  e.Started,
		Duration: e.Duration,
		Err:      e.Err,
	})
}

func onManifestChange(prev, next manifest.Snapshot) {
	extension.Fire(extContext, extension.ManifestChangeEvent{
		Name:     watcher.Name(),
		Existed:  prev.Exists,
		Exists:   next.Exists,
		Err:      next.Err,
		Previous: prev.Live(),
		Current:  next.Live(),
		Changes:  diff.Changes(prev.Live(), next.Live()),
	})
}

// closeWorkspace releases the watcher if one was started.
func closeWorkspace() {
	if extContext != nil {
		pkgs := extContext.Packages()
		slog.Debug("search cache", "terms", pkgs.Len(), "queries", pkgs.Queries())
	}
	if unsubscribe != nil {
		unsubscribe()
	}
	if watcher != nil {
		watcher.Close()
	}
}

var extensionsOnce sync.Once

// registerExtensions adds commands from all registered extensions.
// Called once before Execute runs.
func registerExtensions() {
	extensionsOnce.Do(func() {
		for _, ext := range extension.All() {
			for _, cmd := range ext.Commands() {
				rootCmd.AddCommand(cmd)
			}
		}
		noWorkspaceCommands = buildNoWorkspaceCommands()
	})
}
