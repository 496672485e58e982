package cli

import (
	"fmt"

	"github.com/javanhut/helix-manifest/internal/colors"
	"github.com/javanhut/helix-manifest/internal/manifest"
	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <name>...",
	Short: "Print the manifest key of component names",
	Long: `Print the manifest key each name would be stored under: lowercased, with
whitespace runs turned into '-' and everything but letters, digits, '_' and
'-' removed.

Examples:
  helix normalize "Primary Button"
  helix normalize "Icon / Arrow Left" "Card (Elevated)"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNormalize,
}

func runNormalize(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, name := range args {
		key := manifest.Normalize(name)
		if len(args) == 1 {
			fmt.Fprintln(out, key)
			continue
		}
		if key == "" {
			key = colors.Gray("(empty)")
		}
		fmt.Fprintf(out, "%s\t%s\n", colors.ComponentName(name), key)
	}
	return nil
}
