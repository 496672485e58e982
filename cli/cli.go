package cli

import (
	"fmt"
	"os"

	"github.com/javanhut/helix-manifest/internal/colors"
	"github.com/javanhut/helix-manifest/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "helix",
	Short: "Helix builds component manifests from design documents",
	Long: `Helix scans a design document for its components and component sets and
writes a manifest mapping each normalized component name to its key and
variant axes, so code generators can resolve components by name.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	verbose bool
	noColor bool

	// logger is replaced in setup once flags are parsed.
	logger = logging.Discard()
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, colors.ErrorText("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	// Manifest generation
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(normalizeCmd)

	// Published definition cache
	rootCmd.AddCommand(definitionCmd)
	definitionCmd.AddCommand(definitionSyncCmd, definitionShowCmd)

	// Local manifest history
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyPruneCmd)

	rootCmd.AddCommand(configCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	logger = logging.New(cmd.ErrOrStderr(), verbose)
	if noColor {
		colors.SetColorEnabled(false)
	}
	return nil
}
