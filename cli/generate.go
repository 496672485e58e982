package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/javanhut/helix-manifest/internal/colors"
	"github.com/javanhut/helix-manifest/internal/document"
	"github.com/javanhut/helix-manifest/internal/manifest"
	"github.com/javanhut/helix-manifest/internal/output"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [document.json | -]",
	Short: "Generate the component manifest of a design document",
	Long: `Scan a design document and print its component manifest.

The document is a Figma file response, a DOCUMENT node, a single node or an
array of nodes, read from a file, from stdin ('-'), or fetched from the Figma
API with --figma-file. Component sets become entries with their variant axes;
components become entries unless they are variants of a set.

Examples:
  helix generate design.json
  helix generate --figma-file AbC123 --output helix-manifest.json
  cat design.json | helix generate - --quiet --output manifest.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

var (
	generateFigmaFile      string
	generateOutput         string
	generateMaxDepth       int
	generateSyncDefinition bool
	generateNoHistory      bool
	generateQuiet          bool
	generateList           bool
)

func init() {
	generateCmd.Flags().StringVar(&generateFigmaFile, "figma-file", "", "Fetch the document from the Figma API by file key")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Also write the manifest to this file")
	generateCmd.Flags().IntVar(&generateMaxDepth, "max-depth", 0, "Fail when the document is nested deeper than this (default from scan.max_depth)")
	generateCmd.Flags().BoolVar(&generateSyncDefinition, "sync-definition", false, "Refresh the cached Helix definition before scanning")
	generateCmd.Flags().BoolVar(&generateNoHistory, "no-history", false, "Do not record the manifest in the local history")
	generateCmd.Flags().BoolVarP(&generateQuiet, "quiet", "q", false, "Do not print the manifest to stdout")
	generateCmd.Flags().BoolVarP(&generateList, "list", "l", false, "List the manifest entries on stderr")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if generateMaxDepth > 0 {
		cfg.Scan.MaxDepth = generateMaxDepth
	}
	if generateOutput != "" {
		cfg.Output.Path = generateOutput
	}
	if generateNoHistory {
		cfg.Output.History = false
	}

	ctx := cmd.Context()

	var sinks output.Multi
	if !generateQuiet {
		sinks = append(sinks, output.Console{W: cmd.OutOrStdout()})
	}
	if cfg.Output.Path != "" {
		sinks = append(sinks, output.File{Path: cfg.Output.Path})
	}
	if cfg.Output.History || generateSyncDefinition {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if cfg.Output.History {
			sinks = append(sinks, output.History{Store: st, Logger: logger})
		}
		if generateSyncDefinition {
			loader, err := newDefinitionLoader(cfg, st)
			if err != nil {
				return err
			}
			// The definition does not feed the scan; a failure is reported
			// and generation continues.
			if _, err := loader.Load(ctx); err != nil {
				logger.Error("No definition available", "err", err)
			}
		}
	}

	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	data, err := readDocument(ctx, cfg, cmd.InOrStdin(), path, generateFigmaFile)
	if err != nil {
		return err
	}

	doc, err := document.DecodeBytes(data)
	if err != nil {
		return err
	}
	logger.Debug("Decoded document", "name", doc.Name, "roots", len(doc.Roots))

	opts := manifest.DefaultOptions()
	opts.MaxDepth = cfg.Scan.MaxDepth
	m, stats, err := manifest.GenerateWithStats(doc.Roots, opts)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	for _, c := range stats.Collisions {
		logger.Debug("Component name collision, keeping last", "name", c.Name, "previous", c.PreviousKey, "key", c.Key)
	}
	logger.Debug("Scanned document", "nodes", stats.Visited, "components", stats.Entries)

	if err := sinks.Emit(m); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n",
		colors.SuccessText("Manifest generated:"),
		colors.Bold(fmt.Sprintf("%d components", m.Components.Len())))
	if cfg.Output.Path != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "  written to %s\n", colors.InfoText(cfg.Output.Path))
	}
	if n := len(stats.Collisions); n > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), colors.WarningText(
			fmt.Sprintf("Warning: %d name collision(s), later components replaced earlier ones", n)))
	}
	if generateList {
		printComponents(cmd.ErrOrStderr(), m.Components)
	}
	return nil
}

// printComponents lists each entry with its key and variant axes.
func printComponents(w io.Writer, c *manifest.Components) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, colors.SectionHeader("Components:"))
	for _, name := range c.Names() {
		e, _ := c.Get(name)
		axes := colors.Dim("(no variants)")
		if len(e.VariantProps) > 0 {
			labels := make([]string, len(e.VariantProps))
			for i, p := range e.VariantProps {
				labels[i] = colors.VariantAxis(p)
			}
			axes = strings.Join(labels, ", ")
		}
		fmt.Fprintf(w, "  %s  %s  %s\n", colors.ComponentName(name), colors.ComponentKey(e.Key), axes)
	}
}
