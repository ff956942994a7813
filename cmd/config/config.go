// Package config provides CLI commands for beam configuration management.
package config

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/soniclabs/beamkit/internal/config"
	"github.com/soniclabs/beamkit/internal/output"
)

// NewCommand returns the config command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit beam configuration",
		Long:  "Show, set, and edit the TOML configuration at ~/.beam/config.toml.",
	}

	cmd.AddCommand(newShowCommand())
	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newEditCommand())

	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [key]",
		Short: "Show the configuration, or one dotted key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Open(config.DefaultDir())
			if err != nil {
				return err
			}
			w := output.NewWriter(output.FormatJSON)
			if len(args) == 1 {
				return w.WriteJSON(store.Get(args[0]))
			}
			settings := store.AllSettings()
			redactTokens(settings)
			return w.WriteJSON(settings)
		},
	}
}

// redactTokens masks credential values so `config show` is safe to paste
// into support tickets.
func redactTokens(m map[string]any) {
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			redactTokens(val)
		case string:
			if val != "" && (k == "access_token" || k == "api_key") {
				m[k] = "********"
			}
		}
	}
}

func newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value by dotted key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Open(config.DefaultDir())
			if err != nil {
				return err
			}
			store.Set(args[0], args[1])
			if err := store.Save(); err != nil {
				return err
			}
			output.Success("Set %s", args[0])
			return nil
		},
	}
}

func newEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the configuration file in $EDITOR",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Open(config.DefaultDir())
			if err != nil {
				return err
			}
			editor := os.Getenv("EDITOR")
			if editor == "" {
				editor = "vi"
			}
			if _, err := os.Stat(store.Path()); os.IsNotExist(err) {
				if err := store.Save(); err != nil {
					return err
				}
			}
			ed := exec.CommandContext(cmd.Context(), editor, store.Path())
			ed.Stdin = os.Stdin
			ed.Stdout = os.Stdout
			ed.Stderr = os.Stderr
			if err := ed.Run(); err != nil {
				return fmt.Errorf("%s: %w", editor, err)
			}
			return nil
		},
	}
}
