// Package auth provides CLI commands for Beam API keys and tokens.
package auth

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soniclabs/beamkit/internal/config"
	"github.com/soniclabs/beamkit/internal/control"
	"github.com/soniclabs/beamkit/internal/output"
)

// NewCommand returns the auth command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Inspect and manage API keys",
		Long:  "List, reveal, and revoke the API keys of the current app.",
	}

	keys := &cobra.Command{
		Use:   "keys",
		Short: "Manage the current app's API keys",
	}
	keys.AddCommand(newKeysListCommand())
	keys.AddCommand(newKeysCreateCommand())
	keys.AddCommand(newKeysRevokeCommand())
	cmd.AddCommand(keys)

	cmd.AddCommand(newWhichCommand())

	return cmd
}

func newKeysListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List API keys of the current app",
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
			keys, err := client.ListKeys(cmd.Context(), appID)
			if err != nil {
				return err
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				return output.NewWriter(output.FormatJSON).WriteJSON(keys)
			}
			if len(keys) == 0 {
				fmt.Println("No keys.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID\tNAME\tCAPABILITY\tREVOKED\n")
			for _, k := range keys {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", k.ID, k.Name, strings.Join(k.Capability, ","), k.Revoked)
			}
			return w.Flush()
		},
	}
}

func newKeysCreateCommand() *cobra.Command {
	var (
		name       string
		capability []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a new API key for the current app",
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
			key, err := client.CreateKey(cmd.Context(), appID, name, capability)
			if err != nil {
				return err
			}
			output.Success("Issued key %s", key.ID)
			// The full key is shown exactly once; it is not retrievable later.
			fmt.Println(key.Key)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name for the key")
	cmd.Flags().StringSliceVar(&capability, "capability", []string{"publish", "subscribe"}, "Capabilities granted to the key")
	return cmd
}

func newKeysRevokeCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "revoke <key-id>",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.RequireAccess()
			if err != nil {
				return err
			}
			appID := store.CurrentAppID()
			if appID == "" {
				return fmt.Errorf("no app selected — run: beam apps switch <app-id>")
			}

			ok, err := output.ConfirmOrForce(force,
				fmt.Sprintf("Revoke key %s? Clients using it will be disconnected.", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted.")
				return nil
			}

			client := control.NewClient(store.AccessToken())
			if err := client.RevokeKey(cmd.Context(), appID, args[0]); err != nil {
				return err
			}
			output.Success("Revoked key %s", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}

func newWhichCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "which",
		Short: "Show which key data-plane commands will use",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, key, err := config.RequireAppKey()
			if err != nil {
				return err
			}
			keyID, _, _ := strings.Cut(key, ":")
			fmt.Printf("Using key %s (secret hidden)\n", keyID)
			return nil
		},
	}
}
