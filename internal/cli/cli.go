// Package cli implements the lzmap command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lzmap/lzmap/pkg/buildinfo"
	"github.com/lzmap/lzmap/pkg/cache"
	"github.com/lzmap/lzmap/pkg/classify"
	"github.com/lzmap/lzmap/pkg/pipeline"
	"github.com/lzmap/lzmap/pkg/preset"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "lzmap"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "lzmap",
		Short:        "lzmap renders Azure landing-zone architecture diagrams",
		Long:         `lzmap turns migration-assessment inventories into landing-zone architecture diagrams: management groups, subscriptions, networks, and workload tiers laid out as nested containers with semantic connections.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.presetsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cch, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cch, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/lzmap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// readRecords loads assessment records from a JSON file. "-" reads stdin.
func readRecords(path string) ([]classify.Record, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	var records []classify.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse records %s: %w", path, err)
	}
	return records, nil
}

// resolvePreset loads a preset from --preset-file when set, otherwise looks up
// a builtin by name.
func resolvePreset(name, file string) (preset.Preset, error) {
	if file != "" {
		return preset.Load(file)
	}
	if name == "" {
		return preset.Default(), nil
	}
	return preset.Builtin(name)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatDrawio}
	}
	return strings.Split(s, ",")
}

// extFor maps a format to its output file extension.
func extFor(format string) string {
	if format == pipeline.FormatJSON {
		return ".json"
	}
	return ".drawio"
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, the extension is stripped from input.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "diagram"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if ext == ".drawio" || ext == ".json" || ext == ".xml" {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
