package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lzmap/lzmap/pkg/preset"
)

// presetsCommand creates the presets command group.
func (c *CLI) presetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List and inspect topology presets",
	}

	cmd.AddCommand(c.presetsListCommand())
	cmd.AddCommand(c.presetsShowCommand())
	cmd.AddCommand(c.presetsPickCommand())

	return cmd
}

// presetsListCommand creates the "presets list" subcommand.
func (c *CLI) presetsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List builtin presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range preset.BuiltinNames() {
				p, _ := preset.Builtin(name)
				marker := " "
				if name == preset.DefaultName {
					marker = "*"
				}
				fmt.Printf("%s %s  %s\n", marker, StyleHighlight.Render(name), StyleDim.Render(p.String()))
			}
			printDetail("* default")
			return nil
		},
	}
}

// presetsShowCommand creates the "presets show" subcommand. The output is a
// valid preset file, so it doubles as a template for custom presets.
func (c *CLI) presetsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "show [name]",
		Short:     "Print a builtin preset as TOML",
		Args:      cobra.ExactArgs(1),
		ValidArgs: preset.BuiltinNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := preset.Builtin(args[0])
			if err != nil {
				return err
			}
			return toml.NewEncoder(os.Stdout).Encode(p)
		},
	}
}

// presetsPickCommand creates the "presets pick" subcommand, an interactive
// preset browser. The selected preset is written as TOML to --output or
// stdout, ready for editing and --preset-file.
func (c *CLI) presetsPickCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Interactively select a preset",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := NewPresetListModel(preset.Builtins())
			final, err := tea.NewProgram(m).Run()
			if err != nil {
				return err
			}
			picked, ok := final.(PresetListModel)
			if !ok || picked.Selected == nil {
				printInfo("No preset selected")
				return nil
			}

			w := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := toml.NewEncoder(w).Encode(*picked.Selected); err != nil {
				return err
			}
			if output != "" {
				printSuccess("Wrote %s", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the selected preset to a file")

	return cmd
}
