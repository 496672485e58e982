package cli

import (
	"fmt"

	"github.com/javanhut/helix-manifest/internal/colors"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect manifests recorded by previous runs",
	Long: `Every generated manifest is recorded in the local store under its
generation timestamp, unless output.history is false or --no-history is given.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded manifests, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [timestamp]",
	Short: "Print a recorded manifest (default: the latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest recorded manifests",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

var historyKeep int

func init() {
	historyPruneCmd.Flags().IntVar(&historyKeep, "keep", 10, "Number of manifests to keep")
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.ListManifests()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), colors.Gray("No manifests recorded"))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), colors.SectionHeader("Recorded manifests:"))
	for _, r := range records {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s  %s\n",
			colors.InfoText(r.ID),
			colors.Yellow(r.Digest.Short()),
			colors.Gray(fmt.Sprintf("%d bytes", r.Size)))
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	id := ""
	if len(args) == 1 {
		id = args[0]
	} else if id, err = db.LatestManifest(); err != nil {
		return err
	}

	data, _, err := db.GetManifest(id)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := db.PruneManifests(historyKeep)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d manifest(s)\n", colors.SuccessText("Pruned"), removed)
	return nil
}
