// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewCommand returns the completion command.
func NewCommand(rootCmd *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completions",
		Long: `Generate shell completion scripts for beam.

Install instructions:
  Bash:       beam completion bash > /etc/bash_completion.d/beam
              echo 'source <(beam completion bash)' >> ~/.bashrc
  Zsh:        beam completion zsh > ~/.zsh/completions/_beam
  Fish:       beam completion fish > ~/.config/fish/completions/beam.fish
  PowerShell: beam completion powershell >> $PROFILE`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				fmt.Fprintln(os.Stdout, "# beam bash completion")
				fmt.Fprintln(os.Stdout, "# Install: beam completion bash > /etc/bash_completion.d/beam")
				fmt.Fprintln(os.Stdout, "# Or:      echo 'source <(beam completion bash)' >> ~/.bashrc")
				fmt.Fprintln(os.Stdout)
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				fmt.Fprintln(os.Stdout, "# beam zsh completion")
				fmt.Fprintln(os.Stdout, "# Install: beam completion zsh > ~/.zsh/completions/_beam")
				fmt.Fprintln(os.Stdout)
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				fmt.Fprintln(os.Stdout, "# beam fish completion")
				fmt.Fprintln(os.Stdout, "# Install: beam completion fish > ~/.config/fish/completions/beam.fish")
				fmt.Fprintln(os.Stdout)
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				fmt.Fprintln(os.Stdout, "# beam PowerShell completion")
				fmt.Fprintln(os.Stdout, "# Install: beam completion powershell >> $PROFILE")
				fmt.Fprintln(os.Stdout)
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", args[0])
			}
		},
	}
	return cmd
}
