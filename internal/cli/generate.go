package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lzmap/lzmap/pkg/pipeline"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	output     string   // output file path (or base path for multiple formats)
	presetName string   // builtin preset name
	presetFile string   // TOML preset file, overrides presetName
	formats    []string // output formats: "drawio", "json"
	title      string   // diagram title
	legend     bool     // include the style legend
	noCache    bool     // disable the artifact cache
	refresh    bool     // bypass cached artifacts
}

// generateCommand creates the generate command, the main entry point of the
// CLI: assessment records in, diagram documents out.
func (c *CLI) generateCommand() *cobra.Command {
	var formatsStr string
	opts := generateOpts{legend: true}

	cmd := &cobra.Command{
		Use:   "generate [records.json]",
		Short: "Generate a landing-zone diagram from assessment records",
		Long: `Generate reads a JSON array of assessment records (VM name, cores,
memory, recommended size, environment tag), classifies the workloads into
tiers, and renders the landing-zone topology selected by the preset.

Pass "-" to read records from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runGenerate(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.presetName, "preset", "p", "", "builtin preset name (default: hub-spoke)")
	cmd.Flags().StringVar(&opts.presetFile, "preset-file", "", "TOML preset file (overrides --preset)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): drawio (default), json (comma-separated)")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title")
	cmd.Flags().BoolVar(&opts.legend, "legend", opts.legend, "include the style legend")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "regenerate even if a cached artifact exists")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, input string, opts *generateOpts) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	records, err := readRecords(input)
	if err != nil {
		return err
	}
	logger.Infof("Loaded %d assessment records", len(records))

	p, err := resolvePreset(opts.presetName, opts.presetFile)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	result, err := runner.Execute(cmd.Context(), pipeline.Options{
		Records: records,
		Preset:  p,
		Formats: opts.formats,
		Legend:  opts.legend,
		Title:   opts.title,
		Refresh: opts.refresh,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	if result.Mismatch != nil {
		printWarning("%s", result.Mismatch)
	}

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		path := base + extFor(format)
		if opts.output != "" && len(opts.formats) == 1 {
			path = opts.output
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printSuccess("%s %s", StyleValue.Render(path), cacheTag(result.CacheInfo.Hits[format]))
	}

	printDetail("preset: %s", p.Name)
	printDetail("nodes: %d, edges: %d", result.Stats.NodeCount, result.Stats.EdgeCount)
	for _, g := range result.Groups {
		printDetail("%s tier: %d VMs", g.Tier, g.VMCount)
	}
	prog.done(fmt.Sprintf("Generated %d artifact(s)", len(opts.formats)))
	return nil
}
