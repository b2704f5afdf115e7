// Package format provides output formatting utilities for CLI display.
//
// Centralises formatting logic so that command implementations focus on
// resolving and running commands while this package handles presentation:
// column alignment, tree rendering and colourised output.
package format

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/jpl-au/pkgpal/internal/command"
	"github.com/jpl-au/pkgpal/internal/diff"
	"github.com/jpl-au/pkgpal/internal/log"
	"github.com/jpl-au/pkgpal/internal/registry"
)

var (
	contextStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	leafStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	descStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	enumStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// label renders one node's line: context nodes get a trailing slash, and
// the description follows after a separator.
func label(t *command.Tree, styled bool) string {
	name := t.Label
	if t.Kind == command.Context {
		name += "/"
	}
	if !styled {
		if t.Description == "" {
			return name
		}
		return name + "  " + t.Description
	}

	if t.Kind == command.Context {
		name = contextStyle.Render(name)
	} else {
		name = leafStyle.Render(name)
	}
	if t.Description == "" {
		return name
	}
	return name + "  " + descStyle.Render(t.Description)
}

// Tree prints a resolved command tree. Styled output uses lipgloss with
// rounded connectors; plain output uses box-drawing connectors only.
func Tree(w io.Writer, t *command.Tree, styled bool) error {
	if t == nil {
		return nil
	}
	if styled {
		_, err := fmt.Fprintln(w, styledTree(t).String())
		return err
	}

	fmt.Fprintln(w, label(t, false))
	var printNode func(n *command.Tree, prefix string)
	printNode = func(n *command.Tree, prefix string) {
		for i, child := range n.Children {
			last := i == len(n.Children)-1

			connector := "├── "
			if last {
				connector = "└── "
			}
			fmt.Fprintf(w, "%s%s%s\n", prefix, connector, label(child, false))

			pfx := prefix
			if last {
				pfx += "    "
			} else {
				pfx += "│   "
			}
			if len(child.Children) > 0 {
				printNode(child, pfx)
			}
		}
	}
	printNode(t, "")
	return nil
}

func styledTree(t *command.Tree) *tree.Tree {
	root := tree.Root(label(t, true)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumStyle)
	for _, c := range t.Children {
		if len(c.Children) == 0 {
			root.Child(label(c, true))
			continue
		}
		root.Child(styledTree(c))
	}
	return root
}

// Nodes prints one line per node: label, then description.
func Nodes(w io.Writer, nodes []*command.Node) error {
	width := 0
	for _, n := range nodes {
		width = max(width, len(n.Metadata().Label))
	}
	for _, n := range nodes {
		m := n.Metadata()
		marker := " "
		if n.Kind() == command.Context {
			marker = ">"
		}
		fmt.Fprintf(w, "%s %-*s  %s\n", marker, width, m.Label, m.Description)
	}
	return nil
}

// Packages prints search hits as aligned NAME VERSION DESCRIPTION columns.
func Packages(w io.Writer, pkgs []registry.Package) error {
	if len(pkgs) == 0 {
		return nil
	}

	maxName, maxVer := 4, 7 // "NAME", "VERSION"
	for _, p := range pkgs {
		maxName = max(maxName, len(p.Name))
		maxVer = max(maxVer, len(p.Version))
	}

	fmt.Fprintf(w, "%-*s  %-*s  %s\n", maxName, "NAME", maxVer, "VERSION", "DESCRIPTION")
	for _, p := range pkgs {
		version := p.Version
		if version == "" {
			version = "-"
		}
		fmt.Fprintf(w, "%-*s  %-*s  %s\n", maxName, p.Name, maxVer, version, truncate(p.Description, 80))
	}
	return nil
}

// History prints audit records, newest first.
func History(w io.Writer, recs []log.Record, colour bool) error {
	for _, r := range recs {
		status := "ok  "
		if !r.Success {
			status = "FAIL"
			if colour {
				status = failStyle.Render(status)
			}
		}
		what := r.Command
		if what == "" {
			what = r.Target
		}
		if what == "" {
			what = "-"
		}
		fmt.Fprintf(w, "%s  %s  %-20s  %-8s  %7s  %s\n",
			r.Start.Format("2006-01-02 15:04:05"),
			status,
			r.Source,
			r.Action,
			r.Duration.Round(time.Millisecond),
			what,
		)
		if r.Error != "" {
			fmt.Fprintf(w, "%s  %s\n", strings.Repeat(" ", 19), r.Error)
		}
	}
	return nil
}

// Changes prints entry-level manifest changes, one per line.
func Changes(w io.Writer, changes []diff.Change, colour bool) error {
	var b strings.Builder
	for _, c := range changes {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	out := b.String()
	if colour {
		out = diff.Colourise(out)
	}
	_, err := io.WriteString(w, out)
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
