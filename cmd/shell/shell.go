// Package shell provides the beam interactive shell command. It assembles
// the command catalog, restriction policy, and config store into a REPL
// session and injects a runner that executes each submitted line against a
// fresh command tree.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/soniclabs/beamkit/cmd/version"
	"github.com/soniclabs/beamkit/internal/catalog"
	"github.com/soniclabs/beamkit/internal/config"
	"github.com/soniclabs/beamkit/internal/output"
	"github.com/soniclabs/beamkit/internal/restrict"
	"github.com/soniclabs/beamkit/internal/shell"
)

// NewCommand returns the shell command. newRoot builds a root command tree;
// it is called once to derive the catalog and again for every dispatched
// line, so flag values never leak from one invocation into the next.
func NewCommand(newRoot func() *cobra.Command) *cobra.Command {
	var eval string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive beam shell",
		Long: `Start an interactive shell with tab completion and history.

Commands are entered without the leading "beam". Both space-separated and
colon-separated forms are accepted: "channels publish" and
"channels:publish" name the same command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, store, err := newSession(newRoot)
			if err != nil {
				return err
			}

			if eval != "" {
				switch sess.Dispatch(eval) {
				case shell.OutcomeOK, shell.OutcomeExit, shell.OutcomeHelp:
					return nil
				default:
					os.Exit(output.ExitUserError)
				}
			}

			// Another beam process switching apps should show up in the
			// prompt and in completion without restarting the shell.
			if w, err := store.Watch(func() {
				store.Reload()
				sess.Refresh()
			}); err == nil {
				defer w.Close()
			}

			return sess.Run()
		},
	}
	cmd.Flags().StringVar(&eval, "eval", "", "Run a single shell line and exit")
	return cmd
}

func newSession(newRoot func() *cobra.Command) (*shell.Session, *config.Store, error) {
	dir := config.DefaultDir()
	store, err := config.Open(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("shell: open config: %w", err)
	}

	policy, err := restrict.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("shell: load restriction rules: %w", err)
	}

	cat := catalog.FromCommand(newRoot(),
		catalog.WithDevFlags(os.Getenv("BEAM_DEV_FLAGS") != ""))

	sess, err := shell.New(shell.Config{
		Catalog:     cat,
		Policy:      policy,
		Mode:        restrict.ModeFromEnv(os.Getenv),
		Store:       store,
		Runner:      runner(newRoot),
		HistoryFile: filepath.Join(dir, "shell_history"),
		Version:     version.Version,
		NoBanner:    os.Getenv("BEAM_NO_BANNER") == "1",
	})
	if err != nil {
		return nil, nil, err
	}
	return sess, store, nil
}

// runner executes one line against a fresh root command. Building a new
// tree per dispatch is what keeps "--count 5" on one publish from becoming
// the default for the next.
func runner(newRoot func() *cobra.Command) shell.CommandRunner {
	return func(ctx context.Context, args []string, stdout, stderr io.Writer) error {
		root := newRoot()
		root.SetArgs(args)
		root.SetOut(stdout)
		root.SetErr(stderr)
		root.SetIn(os.Stdin)
		return root.ExecuteContext(ctx)
	}
}
