package cli

import (
	"fmt"
	"strings"

	"github.com/javanhut/helix-manifest/internal/colors"
	"github.com/javanhut/helix-manifest/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get and set configuration options",
	Long: `Get and set Helix configuration options.

Configuration can be set at two levels:
- Global (~/.helixconfig) - applies to every project
- Project (.helix/config) - applies to the current directory only

Examples:
  helix config figma.token "figd_..."
  helix config --global definition.url https://example.com/helix.json
  helix config scan.max_depth 256
  helix config --list
  helix config output.path`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

var (
	configGlobal bool
	configList   bool
)

func init() {
	configCmd.Flags().BoolVar(&configGlobal, "global", false, "Use global config file")
	configCmd.Flags().BoolVar(&configList, "list", false, "List all configuration")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configList {
		return listConfig(cmd)
	}

	switch len(args) {
	case 1:
		return getConfigValue(cmd, args[0])
	case 2:
		return setConfigValue(cmd, args[0], args[1], configGlobal)
	}
	return fmt.Errorf("invalid usage. See: helix config --help")
}

func listConfig(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	section := ""
	for _, key := range config.Keys {
		name, _, _ := strings.Cut(key, ".")
		if name != section {
			if section != "" {
				fmt.Fprintln(out)
			}
			section = name
			fmt.Fprintln(out, colors.SectionHeader(strings.ToUpper(name[:1])+name[1:]+" Configuration:"))
		}

		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		switch {
		case value == "":
			value = colors.Gray("(not set)")
		case key == "figma.token":
			value = colors.InfoText(maskToken(value))
		default:
			value = colors.InfoText(value)
		}
		fmt.Fprintf(out, "  %s = %s\n", key, value)
	}
	return nil
}

func getConfigValue(cmd *cobra.Command, key string) error {
	value, err := config.GetValue(key)
	if err != nil {
		return err
	}

	if value == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", key, colors.Gray("(not set)"))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), value)
	}
	return nil
}

func setConfigValue(cmd *cobra.Command, key, value string, global bool) error {
	if err := config.SetValue(key, value, global); err != nil {
		return err
	}

	scope := "project"
	if global {
		scope = "global"
	}
	shown := value
	if key == "figma.token" {
		shown = maskToken(value)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s config: %s = %s\n",
		colors.SuccessText("Set"),
		scope,
		colors.Bold(key),
		colors.InfoText(shown))
	return nil
}

// maskToken keeps the first four characters of a secret.
func maskToken(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:4] + strings.Repeat("*", 8)
}
