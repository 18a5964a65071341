package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/lzmap/lzmap/pkg/build"
	lzerrors "github.com/lzmap/lzmap/pkg/errors"
	"github.com/lzmap/lzmap/pkg/validate"
)

// validateCommand creates the validate command. It runs the pipeline up to
// structural validation without producing output, so record files and preset
// configs can be checked in CI.
func (c *CLI) validateCommand() *cobra.Command {
	var presetName, presetFile string

	cmd := &cobra.Command{
		Use:   "validate [records.json]",
		Short: "Check records and preset without rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(args[0])
			if err != nil {
				return err
			}
			p, err := resolvePreset(presetName, presetFile)
			if err != nil {
				return err
			}
			if err := p.Validate(); err != nil {
				return reportViolations(err)
			}

			m, err := build.Build(records, p)
			if err != nil {
				return err
			}
			if err := validate.Model(m); err != nil {
				return reportViolations(err)
			}

			printSuccess("Valid: %d records, %d nodes", len(records), m.NodeCount())
			printDetail("preset: %s", p.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&presetName, "preset", "p", "", "builtin preset name (default: hub-spoke)")
	cmd.Flags().StringVar(&presetFile, "preset-file", "", "TOML preset file (overrides --preset)")

	return cmd
}

// reportViolations prints each violation on its own line before returning the
// error, so the exit status reflects failure but users see the full list.
func reportViolations(err error) error {
	var verr *lzerrors.ValidationError
	if errors.As(err, &verr) {
		for _, v := range verr.Violations {
			printError("%s", v.String())
		}
	}
	return err
}
