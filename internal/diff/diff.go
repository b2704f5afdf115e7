// Package diff describes how the manifest changed between two snapshots,
// both as a line diff of the raw text and as a summary of which scripts and
// dependencies were added, removed or changed.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/jpl-au/pkgpal/internal/manifest"
)

// contextLines is the number of unchanged lines shown before/after changes.
// When equal sections exceed 2*contextLines, they're collapsed with "...".
const contextLines = 3

// Result holds diff output.
type Result struct {
	Old  string // old label
	New  string // new label
	Diff string // plain diff text
}

// Empty reports whether the two sides were identical.
func (r Result) Empty() bool {
	for _, line := range strings.Split(r.Diff, "\n") {
		if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "+ ") {
			return false
		}
	}
	return true
}

// Compute returns a line diff between old and new content.
func Compute(oldContent, newContent, oldLabel, newLabel string) Result {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldContent, newContent)
	d := dmp.DiffMain(a, b, false)
	d = dmp.DiffCharsToLines(d, lines)
	d = dmp.DiffCleanupSemantic(d)

	return Result{
		Old:  oldLabel,
		New:  newLabel,
		Diff: format(d),
	}
}

// format converts diffs to unified-style text.
func format(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		// Trim trailing newline to avoid artefact empty string from Split
		text := strings.TrimSuffix(d.Text, "\n")
		if text == "" {
			continue
		}
		lines := strings.Split(text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			for _, l := range lines {
				b.WriteString("- " + l + "\n")
			}
		case diffmatchpatch.DiffInsert:
			for _, l := range lines {
				b.WriteString("+ " + l + "\n")
			}
		case diffmatchpatch.DiffEqual:
			if len(lines) > 2*contextLines {
				for i := range contextLines {
					b.WriteString("  " + lines[i] + "\n")
				}
				b.WriteString("  ...\n")
				for i := len(lines) - contextLines; i < len(lines); i++ {
					b.WriteString("  " + lines[i] + "\n")
				}
			} else {
				for _, l := range lines {
					b.WriteString("  " + l + "\n")
				}
			}
		}
	}
	return b.String()
}

// Colourise adds ANSI colours to diff output.
func Colourise(d string) string {
	const (
		red   = "\033[31m"
		green = "\033[32m"
		reset = "\033[0m"
	)

	var b strings.Builder
	for _, line := range strings.Split(d, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "- "):
			b.WriteString(red + line + reset + "\n")
		case strings.HasPrefix(line, "+ "):
			b.WriteString(green + line + reset + "\n")
		default:
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

// Format returns the full diff with header.
func (r Result) Format(colour bool) string {
	header := fmt.Sprintf("--- %s\n+++ %s\n", r.Old, r.New)
	if colour {
		return header + Colourise(r.Diff)
	}
	return header + r.Diff
}

// Op is the kind of change to one manifest entry.
type Op string

const (
	Added   Op = "added"
	Removed Op = "removed"
	Changed Op = "changed"
)

// Change is one script or dependency that differs between manifests.
type Change struct {
	Section string `json:"section"` // "scripts" or "dependencies"
	Op      Op     `json:"op"`
	Name    string `json:"name"`
	Old     string `json:"old,omitempty"`
	New     string `json:"new,omitempty"`
}

func (c Change) String() string {
	switch c.Op {
	case Added:
		return fmt.Sprintf("+ %s %s: %s", c.Section, c.Name, c.New)
	case Removed:
		return fmt.Sprintf("- %s %s: %s", c.Section, c.Name, c.Old)
	default:
		return fmt.Sprintf("~ %s %s: %s -> %s", c.Section, c.Name, c.Old, c.New)
	}
}

// Changes lists entry-level differences between two manifests, scripts
// first. Either side may be nil. Removals and changes follow the old
// manifest's order; additions follow the new one's.
func Changes(prev, next *manifest.Manifest) []Change {
	var oldScripts, newScripts, oldDeps, newDeps []manifest.Entry
	if prev != nil {
		oldScripts, oldDeps = prev.Scripts, prev.Dependencies
	}
	if next != nil {
		newScripts, newDeps = next.Scripts, next.Dependencies
	}
	out := section("scripts", oldScripts, newScripts)
	return append(out, section("dependencies", oldDeps, newDeps)...)
}

func section(name string, prev, next []manifest.Entry) []Change {
	after := make(map[string]string, len(next))
	for _, e := range next {
		after[e.Name] = e.Value
	}
	before := make(map[string]bool, len(prev))

	var out []Change
	for _, e := range prev {
		before[e.Name] = true
		v, ok := after[e.Name]
		switch {
		case !ok:
			out = append(out, Change{Section: name, Op: Removed, Name: e.Name, Old: e.Value})
		case v != e.Value:
			out = append(out, Change{Section: name, Op: Changed, Name: e.Name, Old: e.Value, New: v})
		}
	}
	for _, e := range next {
		if !before[e.Name] {
			out = append(out, Change{Section: name, Op: Added, Name: e.Name, New: e.Value})
		}
	}
	return out
}
