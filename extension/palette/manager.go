// manager.go implements "pkgpal manager".

package palette

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpl-au/pkgpal/cmd"
	"github.com/jpl-au/pkgpal/internal/pkgmgr"
)

func (e *Extension) newManagerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manager",
		Short: "Print the package manager commands would use",
		Long: `Print the package manager detected from the lock files in the project
root, or the one pinned with --manager or manager.default.

Lock files are checked in this order: ` + fmt.Sprint(pkgmgr.Markers()) + `.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			k := e.provider.Manager(c.Context())
			if cmd.JSON() {
				return cmd.PrintJSON(map[string]string{"manager": k.String()})
			}
			fmt.Fprintln(cmd.Out(), k)
			return nil
		},
	}
}
