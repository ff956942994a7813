// Package integrations provides CLI commands for Beam integration rules.
package integrations

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soniclabs/beamkit/internal/config"
	"github.com/soniclabs/beamkit/internal/control"
	"github.com/soniclabs/beamkit/internal/output"
)

// NewCommand returns the integrations command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integrations",
		Short: "Inspect integration rules",
		Long:  "List the integration rules that forward channel traffic to webhooks, queues, and functions.",
	}

	cmd.AddCommand(newListCommand())

	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List integration rules of the current app",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.RequireAccess()
			if err != nil {
				return err
			}
			appID := store.CurrentAppID()
			if appID == "" {
				return fmt.Errorf("no app selected — run: beam apps switch <app-id>")
			}
			client := control.NewClient(store.AccessToken())
			rules, err := client.ListRules(cmd.Context(), appID)
			if err != nil {
				return err
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				return output.NewWriter(output.FormatJSON).WriteJSON(rules)
			}
			if len(rules) == 0 {
				fmt.Println("No integration rules.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID\tTYPE\tMODE\tCHANNEL FILTER\n")
			for _, r := range rules {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Type, r.RequestMode, r.Source.ChannelFilter)
			}
			return w.Flush()
		},
	}
}
