// tree.go implements "pkgpal tree" and "pkgpal ls" for browsing the palette.

package palette

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpl-au/pkgpal/cmd"
	"github.com/jpl-au/pkgpal/extension"
	"github.com/jpl-au/pkgpal/internal/command"
	"github.com/jpl-au/pkgpal/internal/format"
	"github.com/jpl-au/pkgpal/internal/log"
	"github.com/jpl-au/pkgpal/internal/palette"
)

func (e *Extension) newTreeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "tree",
		Short: "Print the resolved palette",
		Long: `Resolve the palette from the root and print it as a tree.

The install context only has entries when --search is given:

  pkgpal tree
  pkgpal tree --search react
  pkgpal tree --depth 1 -o json`,
		Args: cobra.NoArgs,
		RunE: e.runTree,
	}
	c.Flags().StringP(extension.FlagSearch, "s", "", "Search text passed to every resolver")
	c.Flags().IntP(extension.FlagDepth, "d", -1, "Levels below the root to expand (-1 for all)")
	c.Flags().Bool(extension.FlagPlain, false, "Plain connectors even on a terminal")
	return c
}

func (e *Extension) runTree(c *cobra.Command, _ []string) error {
	search, _ := c.Flags().GetString(extension.FlagSearch)
	depth, _ := c.Flags().GetInt(extension.FlagDepth)
	plain, _ := c.Flags().GetBool(extension.FlagPlain)

	q := palette.Untracked(true, search)
	t, err := command.Expand(c.Context(), e.provider.Root(), q, depth)

	b := log.Event("palette:tree", "query").Detail("search", search).Detail("depth", depth)
	if t != nil {
		b.Detail("leaves", t.Leaves())
	}
	b.Write(err)

	if err != nil {
		return cmd.PrintJSONError(err)
	}
	if cmd.JSON() {
		return cmd.PrintJSON(t)
	}
	return format.Tree(cmd.Out(), t, cmd.Styled() && !plain)
}

func (e *Extension) newLsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "ls [path...]",
		Short: "List the children of a palette context",
		Long: `List the entries of a context. Each path segment names a node by ID or
label; no path lists the root.

  pkgpal ls
  pkgpal ls scripts
  pkgpal ls install --search lodash`,
		RunE: e.runLs,
	}
	c.Flags().StringP(extension.FlagSearch, "s", "", "Search text passed to resolvers")
	return c
}

func (e *Extension) runLs(c *cobra.Command, args []string) error {
	ctx := c.Context()
	search, _ := c.Flags().GetString(extension.FlagSearch)

	q := palette.Untracked(true, search)
	node, err := command.Find(ctx, e.provider.Root(), q, args)
	var nodes []*command.Node
	if err == nil {
		nodes, err = node.Children(ctx, q)
	}

	log.Event("palette:ls", "query").
		Target(strings.Join(args, "/")).
		Detail("search", search).
		Detail("count", len(nodes)).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("ls %s: %w", strings.Join(args, " "), err))
	}

	if cmd.JSON() {
		views := make([]*command.Tree, len(nodes))
		for i, n := range nodes {
			views[i], _ = command.Expand(ctx, n, q, 0)
		}
		return cmd.PrintJSON(views)
	}
	return format.Nodes(cmd.Out(), nodes)
}
