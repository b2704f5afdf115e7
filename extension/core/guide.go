// guide.go implements the "pkgpal guide" command for documentation access.
//
// Guides are embedded in the binary via the guide package. Terminal output
// gets glamour rendering; pipes and redirects get raw markdown.

package core

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jpl-au/pkgpal/cmd"
	"github.com/jpl-au/pkgpal/guide"
)

func newGuideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guide [page]",
		Short: "Show the pkgpal usage guide",
		Long: `Outputs the pkgpal guide.

  pkgpal guide           # main guide
  pkgpal guide config    # configuration keys
  pkgpal guide mcp       # MCP tools and resources`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}

			content, err := guide.Get(name)
			if err != nil {
				available, listErr := guide.List()
				if listErr != nil {
					return listErr
				}
				return cmd.PrintJSONError(fmt.Errorf("guide %q not found. Available: %s", name, strings.Join(available, ", ")))
			}

			if cmd.JSON() {
				return cmd.PrintJSON(map[string]string{"page": name, "content": content})
			}
			if cmd.Styled() {
				rendered, err := glamour.Render(content, "dark")
				if err == nil {
					fmt.Fprint(cmd.Out(), rendered)
					return nil
				}
			}

			fmt.Fprint(cmd.Out(), content)
			return nil
		},
	}
}
