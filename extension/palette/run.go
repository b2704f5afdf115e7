// run.go implements "pkgpal run", which executes one palette leaf.

package palette

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jpl-au/pkgpal/cmd"
	"github.com/jpl-au/pkgpal/extension"
	"github.com/jpl-au/pkgpal/internal/command"
	"github.com/jpl-au/pkgpal/internal/palette"
	"github.com/jpl-au/pkgpal/internal/shell"
)

// runResult is the JSON form of a run.
type runResult struct {
	RunID    string `json:"run_id"`
	Label    string `json:"label"`
	Manager  string `json:"manager"`
	ExitCode int    `json:"exit_code"`
	Error    string `json:"error,omitempty"`
}

func (e *Extension) newRunCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "run <path...>",
		Short: "Run a palette leaf",
		Long: `Run the command behind a palette leaf in the project directory. The
package manager is detected again at this point.

  pkgpal run scripts build
  pkgpal run install react --search react
  pkgpal run uninstall lodash
  pkgpal run "npm init"          # when there is no package.json

With -o json the command's own output goes to stderr.`,
		Args: cobra.MinimumNArgs(1),
		RunE: e.runRun,
	}
	c.Flags().StringP(extension.FlagSearch, "s", "", "Search text used to resolve the path")
	return c
}

func (e *Extension) runRun(c *cobra.Command, args []string) error {
	ctx := c.Context()
	search, _ := c.Flags().GetString(extension.FlagSearch)
	path := strings.Join(args, " ")

	q := palette.Untracked(true, search)
	node, err := command.Find(ctx, e.provider.Root(), q, args)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("run %s: %w", path, err))
	}
	if node.Kind() != command.Leaf {
		return cmd.PrintJSONError(fmt.Errorf("run %s: %w", path, command.ErrNotLeaf))
	}

	stdout := cmd.Out()
	if cmd.JSON() {
		stdout = os.Stderr
	}
	res := runResult{
		RunID:   uuid.NewString(),
		Label:   node.Metadata().Label,
		Manager: e.provider.Manager(ctx).String(),
	}
	ctx = palette.WithRunID(ctx, res.RunID)
	ctx = shell.WithIO(ctx, shell.IO{Stdin: os.Stdin, Stdout: stdout, Stderr: os.Stderr})

	err = node.Run(ctx)

	var exit *shell.ExitError
	if errors.As(err, &exit) {
		res.ExitCode = exit.Code
	}
	if err != nil {
		res.Error = err.Error()
	}
	if cmd.JSON() {
		if perr := cmd.PrintJSON(res); perr != nil {
			return perr
		}
		if err != nil {
			c.SilenceErrors = true
			c.SilenceUsage = true
		}
		return err
	}
	if err != nil {
		c.SilenceUsage = true
	}
	return err
}
