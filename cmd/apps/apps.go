// Package apps provides CLI commands for Beam app management.
package apps

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soniclabs/beamkit/internal/config"
	"github.com/soniclabs/beamkit/internal/control"
	"github.com/soniclabs/beamkit/internal/output"
)

// NewCommand returns the apps command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "Manage Beam apps",
		Long:  "List, create, delete, and switch between Beam apps in the current account.",
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newCreateCommand())
	cmd.AddCommand(newDeleteCommand())
	cmd.AddCommand(newCurrentCommand())
	cmd.AddCommand(newSwitchCommand())

	return cmd
}

func listApps(cmd *cobra.Command, store *config.Store) ([]control.App, error) {
	client := control.NewClient(store.AccessToken())
	me, err := client.Me(cmd.Context())
	if err != nil {
		return nil, err
	}
	return client.ListApps(cmd.Context(), me.Account.ID)
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List apps in the current account",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.RequireAccess()
			if err != nil {
				return err
			}
			apps, err := listApps(cmd, store)
			if err != nil {
				return err
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				return output.NewWriter(output.FormatJSON).WriteJSON(apps)
			}
			if len(apps) == 0 {
				fmt.Println("No apps. Run: beam apps create --name <name>")
				return nil
			}
			current := store.CurrentAppID()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, " \tID\tNAME\tSTATUS\n")
			for _, app := range apps {
				marker := " "
				if app.ID == current {
					marker = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, app.ID, app.Name, app.Status)
			}
			return w.Flush()
		},
	}
}

func newCreateCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new app",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			store, err := config.RequireAccess()
			if err != nil {
				return err
			}
			client := control.NewClient(store.AccessToken())
			me, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}
			app, err := client.CreateApp(cmd.Context(), me.Account.ID, name)
			if err != nil {
				return err
			}
			output.Success("Created app %s (%s)", app.Name, app.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Name of the app to create")
	return cmd
}

func newDeleteCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <app-id>",
		Short: "Permanently delete an app and all its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appID := args[0]
			store, err := config.RequireAccess()
			if err != nil {
				return err
			}

			ok, err := output.ConfirmOrForce(force,
				fmt.Sprintf("Delete app %s and ALL of its data? This cannot be undone.", appID))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted.")
				return nil
			}

			client := control.NewClient(store.AccessToken())
			if err := client.DeleteApp(cmd.Context(), appID); err != nil {
				return err
			}
			if store.CurrentAppID() == appID {
				store.SetCurrentApp("", "")
				if err := store.Save(); err != nil {
					return err
				}
			}
			output.Success("Deleted app %s", appID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}

func newCurrentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the currently selected app",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Open(config.DefaultDir())
			if err != nil {
				return err
			}
			appID := store.CurrentAppID()
			if appID == "" {
				fmt.Println("No app selected. Run: beam apps switch <app-id>")
				return nil
			}
			fmt.Printf("%s (%s)\n", store.AppName(appID), appID)
			return nil
		},
	}
}

func newSwitchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <app-id>",
		Short: "Select the app used by channel and queue commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appID := args[0]
			store, err := config.RequireAccess()
			if err != nil {
				return err
			}
			apps, err := listApps(cmd, store)
			if err != nil {
				return err
			}
			name := ""
			for _, app := range apps {
				if app.ID == appID {
					name = app.Name
					break
				}
			}
			if name == "" {
				return fmt.Errorf("unknown app %q — see 'beam apps list'", appID)
			}

			store.SetCurrentApp(appID, name)

			// Cache the first root key so data-plane commands work right away.
			client := control.NewClient(store.AccessToken())
			if keys, err := client.ListKeys(cmd.Context(), appID); err == nil {
				for _, k := range keys {
					if !k.Revoked {
						store.SetAppKey(appID, k.Key)
						break
					}
				}
			}

			if err := store.Save(); err != nil {
				return err
			}
			output.Success("Switched to app %s (%s)", name, appID)
			return nil
		},
	}
}
