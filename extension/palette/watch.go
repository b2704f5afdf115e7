// watch.go implements "pkgpal watch", which reports manifest changes as
// they happen until interrupted.

package palette

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpl-au/pkgpal/cmd"
	"github.com/jpl-au/pkgpal/extension"
	"github.com/jpl-au/pkgpal/internal/diff"
	"github.com/jpl-au/pkgpal/internal/format"
	"github.com/jpl-au/pkgpal/internal/manifest"
)

// watchEvent is one reported change.
type watchEvent struct {
	Time    time.Time     `json:"time"`
	Exists  bool          `json:"exists"`
	Error   string        `json:"error,omitempty"`
	Changes []diff.Change `json:"changes"`
	Diff    string        `json:"diff,omitempty"`
}

func (e *Extension) newWatchCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "watch",
		Short: "Report manifest changes as they happen",
		Long: `Watch the manifest and print which scripts and dependencies were added,
removed or changed each time it changes. Runs until interrupted.

  pkgpal watch
  pkgpal watch --diff       # include a line diff of the file
  pkgpal watch -o json      # one JSON object per change`,
		Args: cobra.NoArgs,
		RunE: e.runWatch,
	}
	c.Flags().Bool(extension.FlagDiff, false, "Show a line diff alongside entry changes")
	return c
}

func (e *Extension) runWatch(c *cobra.Command, _ []string) error {
	ctx := c.Context()
	showDiff, _ := c.Flags().GetBool(extension.FlagDiff)

	events := make(chan watchEvent, 16)
	cancel := e.watcher.Subscribe(func(prev, next manifest.Snapshot) {
		ev := describe(prev, next, showDiff, e.watcher.Name())
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	})
	defer cancel()

	if !cmd.JSON() {
		state := "absent"
		if e.watcher.Snapshot().Exists {
			state = "present"
		}
		fmt.Fprintf(cmd.Out(), "watching %s (%s), ctrl-c to stop\n", e.watcher.Name(), state)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if err := report(ev); err != nil {
				return err
			}
		}
	}
}

// describe summarises one snapshot transition.
func describe(prev, next manifest.Snapshot, withDiff bool, name string) watchEvent {
	ev := watchEvent{
		Time:    time.Now(),
		Exists:  next.Exists,
		Changes: diff.Changes(prev.Live(), next.Live()),
	}
	if ev.Changes == nil {
		ev.Changes = []diff.Change{}
	}
	if next.Err != nil {
		ev.Error = next.Err.Error()
	}
	if withDiff {
		r := diff.Compute(raw(prev), raw(next), name+" (before)", name)
		if !r.Empty() {
			ev.Diff = r.Format(cmd.Styled())
		}
	}
	return ev
}

func raw(s manifest.Snapshot) string {
	if m := s.Live(); m != nil {
		return m.Raw
	}
	return ""
}

func report(ev watchEvent) error {
	if cmd.JSON() {
		return cmd.PrintJSON(ev)
	}
	w := cmd.Out()
	stamp := ev.Time.Format("15:04:05")
	switch {
	case !ev.Exists:
		fmt.Fprintf(w, "%s  removed\n", stamp)
	case ev.Error != "":
		fmt.Fprintf(w, "%s  %s\n", stamp, ev.Error)
	case len(ev.Changes) == 0:
		fmt.Fprintf(w, "%s  changed (no script or dependency changes)\n", stamp)
	default:
		fmt.Fprintf(w, "%s  changed\n", stamp)
	}
	if err := format.Changes(w, ev.Changes, cmd.Styled()); err != nil {
		return err
	}
	if ev.Diff != "" {
		fmt.Fprint(w, ev.Diff)
	}
	return nil
}
