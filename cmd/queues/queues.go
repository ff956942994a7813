// Package queues provides CLI commands for Beam message queues.
package queues

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soniclabs/beamkit/internal/config"
	"github.com/soniclabs/beamkit/internal/control"
	"github.com/soniclabs/beamkit/internal/output"
)

// NewCommand returns the queues command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queues",
		Short: "Manage message queues",
		Long:  "List, provision, and delete the message queues of the current app.",
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newCreateCommand())
	cmd.AddCommand(newDeleteCommand())

	return cmd
}

func requireApp() (*config.Store, string, error) {
	store, err := config.RequireAccess()
	if err != nil {
		return nil, "", err
	}
	appID := store.CurrentAppID()
	if appID == "" {
		return nil, "", fmt.Errorf("no app selected — run: beam apps switch <app-id>")
	}
	return store, appID, nil
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queues of the current app",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, appID, err := requireApp()
			if err != nil {
				return err
			}
			client := control.NewClient(store.AccessToken())
			list, err := client.ListQueues(cmd.Context(), appID)
			if err != nil {
				return err
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				return output.NewWriter(output.FormatJSON).WriteJSON(list)
			}
			if len(list) == 0 {
				fmt.Println("No queues. Run: beam queues create <name>")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "NAME\tREGION\tSTATE\tREADY\tUNACKED\n")
			for _, q := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
					q.Name, q.Region, q.State, q.Messages.Ready, q.Messages.Unacked)
			}
			return w.Flush()
		},
	}
}

func newCreateCommand() *cobra.Command {
	var region string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Provision a queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, appID, err := requireApp()
			if err != nil {
				return err
			}
			client := control.NewClient(store.AccessToken())
			q, err := client.CreateQueue(cmd.Context(), appID, args[0], region)
			if err != nil {
				return err
			}
			output.Success("Created queue %s in %s", q.Name, q.Region)
			return nil
		},
	}
	cmd.Flags().StringVar(&region, "region", "us-east-1", "Region to provision the queue in")
	return cmd
}

func newDeleteCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, appID, err := requireApp()
			if err != nil {
				return err
			}

			ok, err := output.ConfirmOrForce(force,
				fmt.Sprintf("Delete queue %s? Queued messages will be lost.", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted.")
				return nil
			}

			client := control.NewClient(store.AccessToken())
			if err := client.DeleteQueue(cmd.Context(), appID, args[0]); err != nil {
				return err
			}
			output.Success("Deleted queue %s", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}
