// Package cmd contains all CLI commands for the beam binary.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/soniclabs/beamkit/cmd/accounts"
	"github.com/soniclabs/beamkit/cmd/apps"
	cmdauth "github.com/soniclabs/beamkit/cmd/auth"
	"github.com/soniclabs/beamkit/cmd/bench"
	"github.com/soniclabs/beamkit/cmd/channels"
	"github.com/soniclabs/beamkit/cmd/completion"
	cmdconfig "github.com/soniclabs/beamkit/cmd/config"
	"github.com/soniclabs/beamkit/cmd/integrations"
	"github.com/soniclabs/beamkit/cmd/logs"
	"github.com/soniclabs/beamkit/cmd/push"
	"github.com/soniclabs/beamkit/cmd/queues"
	shellcmd "github.com/soniclabs/beamkit/cmd/shell"
	"github.com/soniclabs/beamkit/cmd/spaces"
	"github.com/soniclabs/beamkit/cmd/stats"
	"github.com/soniclabs/beamkit/cmd/status"
	"github.com/soniclabs/beamkit/cmd/version"
)

var (
	jsonOutput bool
	verbose    bool
	noColor    bool
	endpoint   string
)

// NewRootCommand creates the root cobra command with all subcommands
// registered. The interactive shell calls this per dispatch so flag state
// never leaks between invocations.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "beam",
		Short: "CLI for the Beam realtime messaging platform",
		Long: `Beam — realtime messaging from your terminal.

Publish and subscribe to channels, inspect presence and occupancy, manage
apps, API keys, queues, and integrations, and benchmark your account.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI color output")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Override the API endpoint base URL")
	rootCmd.PersistentFlags().MarkHidden("endpoint")

	rootCmd.AddCommand(accounts.NewCommand())
	rootCmd.AddCommand(apps.NewCommand())
	rootCmd.AddCommand(cmdauth.NewCommand())
	rootCmd.AddCommand(bench.NewCommand())
	rootCmd.AddCommand(channels.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(integrations.NewCommand())
	rootCmd.AddCommand(logs.NewCommand())
	rootCmd.AddCommand(push.NewCommand())
	rootCmd.AddCommand(queues.NewCommand())
	rootCmd.AddCommand(spaces.NewCommand())
	rootCmd.AddCommand(stats.NewCommand())
	rootCmd.AddCommand(status.NewCommand())
	rootCmd.AddCommand(shellcmd.NewCommand(NewRootCommand))
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// Execute runs the root command and handles any returned errors.
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
