// Package pkgmgr detects which JavaScript package manager a project uses and
// builds the command strings for it.
//
// Detection probes lockfiles on every call and is never cached, so switching
// managers in a project is picked up by the next command that runs.
package pkgmgr

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"
	"mvdan.cc/sh/v3/syntax"

	"github.com/jpl-au/pkgpal/internal/fsys"
)

// Kind identifies a package manager.
type Kind int

const (
	NPM Kind = iota
	Yarn
	PNPM
	Bun
)

// Kinds lists every supported manager.
var Kinds = []Kind{NPM, Yarn, PNPM, Bun}

// ErrUnknownKind is returned by ParseKind for names it does not recognise.
var ErrUnknownKind = errors.New("unknown package manager")

// String returns the executable name.
func (k Kind) String() string {
	switch k {
	case NPM:
		return "npm"
	case Yarn:
		return "yarn"
	case PNPM:
		return "pnpm"
	case Bun:
		return "bun"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts an executable name to a Kind. Matching ignores case.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return NPM, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// marker is a lockfile whose presence selects a manager.
type marker struct {
	file string
	kind Kind
}

// markers in priority order.
var markers = []marker{
	{"yarn.lock", Yarn},
	{"pnpm-lock.yaml", PNPM},
	{"bun.lockb", Bun},
}

// Markers returns the probed lockfile names in priority order.
func Markers() []string {
	names := make([]string, len(markers))
	for i, m := range markers {
		names[i] = m.file
	}
	return names
}

// Detect reads every lockfile concurrently and returns the highest-priority
// manager whose lockfile is present, or NPM when none is. Any read outcome
// other than not-found counts as present; a cancelled context counts as
// absent. Detect never fails.
func Detect(ctx context.Context, r fsys.Reader) Kind {
	present := make([]bool, len(markers))

	var g errgroup.Group
	for i, m := range markers {
		g.Go(func() error {
			_, err := r.ReadFile(ctx, m.file)
			present[i] = !fsys.IsNotFound(err) && !isContextErr(err)
			return nil
		})
	}
	_ = g.Wait()

	for i, m := range markers {
		if present[i] {
			return m.kind
		}
	}
	return NPM
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Init returns the command that creates a manifest.
func (k Kind) Init() string {
	return k.String() + " init"
}

// Run returns the command that runs the named script.
func (k Kind) Run(script string) string {
	return k.String() + " run " + Quote(script)
}

// Install returns the command that adds pkg as a dependency.
func (k Kind) Install(pkg string) string {
	verb := "i"
	switch k {
	case Yarn:
		verb = "add"
	case Bun:
		verb = "install"
	}
	return k.String() + " " + verb + " " + Quote(pkg)
}

// Uninstall returns the command that removes pkg.
func (k Kind) Uninstall(pkg string) string {
	verb := "uninstall"
	if k == Yarn {
		verb = "remove"
	}
	return k.String() + " " + verb + " " + Quote(pkg)
}

var safeArg = regexp.MustCompile(`^[A-Za-z0-9@%+=:,./_^~-]+$`)

// Quote returns s unchanged when it is a plain word, otherwise quoted for a
// POSIX shell. Script and package names come from the manifest, which is
// trusted, but may still contain spaces.
func Quote(s string) string {
	if safeArg.MatchString(s) {
		return s
	}
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Only fails for strings no shell can represent (NUL bytes).
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return q
}
