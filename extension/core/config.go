// config.go implements the "pkgpal config" command for configuration management.
//
// Config follows a cascade model similar to git: local config
// (.pkgpal/config.yaml in the project) takes precedence over global
// (~/.pkgpal/config.yaml). The --local flag forces the project file even if
// it doesn't exist yet.

package core

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpl-au/pkgpal/cmd"
	"github.com/jpl-au/pkgpal/extension"
	"github.com/jpl-au/pkgpal/internal/config"
	"github.com/jpl-au/pkgpal/internal/log"
)

func newConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "View or set config values",
		Long: `View or set config values.

  pkgpal config                        # show config
  pkgpal config registry.timeout       # show one value
  pkgpal config registry.timeout 5s    # set it

Configuration locations:
  Global: ~/.pkgpal/config.yaml
  Local:  <project>/.pkgpal/config.yaml

Uses local config if it exists, otherwise global.
Writes go to the same place reads come from.
Use --local to use local config instead.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runConfig,
	}
	c.Flags().Bool(extension.FlagLocal, false, "Use local config (.pkgpal/config.yaml)")
	return c
}

func runConfig(c *cobra.Command, args []string) error {
	forceLocal, _ := c.Flags().GetBool(extension.FlagLocal)

	project, err := cmd.Dir()
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	var cfg *config.Config
	if forceLocal {
		cfg, err = config.LoadScope(project, config.ScopeLocal)
	} else {
		cfg, err = config.Load(project)
	}
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("config load: %w", err))
	}

	scopeName := "global"
	if cfg.Scope() == config.ScopeLocal {
		scopeName = "local"
	}

	switch len(args) {
	case 0:
		log.Event("core:config", "list").Detail("scope", scopeName).Write(nil)
		if cmd.JSON() {
			return cmd.PrintJSON(cfg.All())
		}
		all := cfg.All()
		for _, k := range config.ValidKeys() {
			fmt.Fprintf(cmd.Out(), "%s: %s\n", k, all[k])
		}

	case 1:
		v, err := cfg.Get(args[0])
		log.Event("core:config", "get").Detail("key", args[0]).Write(err)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("config get %q: %w", args[0], err))
		}
		if cmd.JSON() {
			return cmd.PrintJSON(map[string]string{args[0]: v})
		}
		fmt.Fprintln(cmd.Out(), v)

	case 2:
		if err := cfg.Set(args[0], args[1]); err != nil {
			log.Event("core:config", "set").Detail("key", args[0]).Write(err)
			return cmd.PrintJSONError(fmt.Errorf("config set %q: %w", args[0], err))
		}

		saveErr := cfg.Save()
		log.Event("core:config", "set").Detail("key", args[0]).Detail("scope", scopeName).Write(saveErr)
		if saveErr != nil {
			return cmd.PrintJSONError(fmt.Errorf("config save: %w", saveErr))
		}
		if cmd.JSON() {
			return cmd.PrintJSON(map[string]string{"key": args[0], "value": args[1], "scope": scopeName, "path": cfg.Path()})
		}
		fmt.Fprintf(cmd.Out(), "%s = %s (%s)\n", args[0], args[1], scopeName)
	}
	return nil
}
