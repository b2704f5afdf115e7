// history.go implements the "pkgpal history" command over the audit log.
//
// The audit log is shared by every project; history shows the current
// project unless --all is given.

package core

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpl-au/pkgpal/cmd"
	"github.com/jpl-au/pkgpal/extension"
	"github.com/jpl-au/pkgpal/internal/duration"
	"github.com/jpl-au/pkgpal/internal/format"
	"github.com/jpl-au/pkgpal/internal/log"
)

const flagAll = "all"

func newHistoryCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "history",
		Short: "Show commands run through the palette",
		Long: `Show recent audit log entries, newest first.

  pkgpal history                    # this project
  pkgpal history --since 7d --failed
  pkgpal history --action exec -n 10
  pkgpal history --all              # every project`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}
	c.Flags().String(extension.FlagSince, "", "Only entries newer than this (e.g. 2h, 7d, 1m)")
	c.Flags().String(extension.FlagAction, "", "Only entries with this action (e.g. exec, search)")
	c.Flags().Bool(extension.FlagFailed, false, "Only failed entries")
	c.Flags().IntP(extension.FlagLimit, "n", 50, "Maximum entries shown")
	c.Flags().Bool(flagAll, false, "Include every project")
	return c
}

func runHistory(c *cobra.Command, _ []string) error {
	since, _ := c.Flags().GetString(extension.FlagSince)
	action, _ := c.Flags().GetString(extension.FlagAction)
	failed, _ := c.Flags().GetBool(extension.FlagFailed)
	limit, _ := c.Flags().GetInt(extension.FlagLimit)
	all, _ := c.Flags().GetBool(flagAll)

	if limit < 0 {
		return cmd.PrintJSONError(fmt.Errorf("limit must be >= 0, got %d", limit))
	}

	f := log.Filter{Action: action, Failed: failed, Limit: limit}
	if since != "" {
		d, err := duration.Parse(since)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("--since: %w", err))
		}
		f.Since = d
	}
	if !all {
		project, err := cmd.Dir()
		if err != nil {
			return cmd.PrintJSONError(err)
		}
		f.Project = log.ProjectID(project)
	}

	recs, err := log.Recent(f)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("history: %w", err))
	}

	if cmd.JSON() {
		if recs == nil {
			recs = []log.Record{}
		}
		return cmd.PrintJSON(recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(cmd.Out(), "no entries")
		return nil
	}
	return format.History(cmd.Out(), recs, cmd.Styled())
}
