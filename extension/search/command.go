// command.go implements "pkgpal search".

package search

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpl-au/pkgpal/cmd"
	"github.com/jpl-au/pkgpal/extension"
	"github.com/jpl-au/pkgpal/internal/format"
	"github.com/jpl-au/pkgpal/internal/log"
	"github.com/jpl-au/pkgpal/internal/registry"
)

func (e *Extension) newSearchCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "search <term...>",
		Short: "Search the package registry",
		Long: `Search the configured registry (registry.url) and list matching packages
with their latest version.

  pkgpal search react router
  pkgpal search zod -n 5 -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: e.runSearch,
	}
	c.Flags().IntP(extension.FlagLimit, "n", 0, "Maximum results shown (0 for all)")
	return c
}

func (e *Extension) runSearch(c *cobra.Command, args []string) error {
	term := strings.Join(args, " ")
	limit, _ := c.Flags().GetInt(extension.FlagLimit)

	pkgs, err := e.pkgs.Lookup(c.Context(), term)

	log.Event("search:search", "search").
		Detail("term", term).
		Detail("count", len(pkgs)).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(err)
	}
	pkgs = head(pkgs, limit)

	if cmd.JSON() {
		return cmd.PrintJSON(pkgs)
	}
	if len(pkgs) == 0 {
		fmt.Fprintf(cmd.Out(), "no packages match %q\n", term)
		return nil
	}
	return format.Packages(cmd.Out(), pkgs)
}

// head returns at most n packages; n <= 0 keeps all.
func head(pkgs []registry.Package, n int) []registry.Package {
	if n <= 0 || len(pkgs) <= n {
		return pkgs
	}
	return pkgs[:n]
}
