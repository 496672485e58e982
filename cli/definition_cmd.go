package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/javanhut/helix-manifest/internal/colors"
	"github.com/spf13/cobra"
)

var definitionCmd = &cobra.Command{
	Use:   "definition",
	Short: "Manage the cached Helix definition",
	Long: `The Helix definition is the published reference document of the design
system. It is fetched from definition.url and cached locally so that it stays
available offline.`,
}

var definitionSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the definition, falling back to the cached copy",
	Args:  cobra.NoArgs,
	RunE:  runDefinitionSync,
}

var definitionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached definition",
	Args:  cobra.NoArgs,
	RunE:  runDefinitionShow,
}

func runDefinitionSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	loader, err := newDefinitionLoader(cfg, db)
	if err != nil {
		return err
	}
	def, err := loader.Load(cmd.Context())
	if err != nil {
		return err
	}

	version := def.Version
	if version == "" {
		version = "(unversioned)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s from %s\n",
		colors.SuccessText("Definition"),
		colors.Bold(version),
		colors.InfoText(string(def.Source)))
	return nil
}

func runDefinitionShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	loader, err := newDefinitionLoader(cfg, db)
	if err != nil {
		return err
	}
	def, err := loader.Cached()
	if err != nil {
		return fmt.Errorf("no cached definition (run 'helix definition sync'): %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, def.Raw, "", "  "); err != nil {
		return fmt.Errorf("cached definition is not valid JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
	return nil
}
