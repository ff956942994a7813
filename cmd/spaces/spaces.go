// Package spaces provides CLI commands for Beam collaborative spaces.
// Spaces are presence-backed channels under the "spaces:" namespace.
package spaces

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soniclabs/beamkit/internal/config"
	"github.com/soniclabs/beamkit/internal/output"
	"github.com/soniclabs/beamkit/internal/realtime"
)

const namespace = "spaces:"

// NewCommand returns the spaces command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spaces",
		Short: "Inspect collaborative spaces",
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newMembersCommand())

	return cmd
}

func newListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active spaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, key, err := config.RequireAppKey()
			if err != nil {
				return err
			}
			rest := realtime.NewREST(key)
			chans, err := rest.ListChannels(cmd.Context(), namespace, limit)
			if err != nil {
				return err
			}
			if len(chans) == 0 {
				fmt.Println("No active spaces.")
				return nil
			}
			for _, c := range chans {
				fmt.Printf("%s\t%d members\n",
					strings.TrimPrefix(c.Name, namespace), c.Occupancy.PresenceMembers)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of spaces to return")
	return cmd
}

func newMembersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "members <space>",
		Short: "List the members currently in a space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, key, err := config.RequireAppKey()
			if err != nil {
				return err
			}
			rest := realtime.NewREST(key)
			members, err := rest.Presence(cmd.Context(), namespace+args[0])
			if err != nil {
				return err
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				return output.NewWriter(output.FormatJSON).WriteJSON(members)
			}
			if len(members) == 0 {
				fmt.Println("Nobody in this space.")
				return nil
			}
			for _, m := range members {
				fmt.Println(m.ClientID)
			}
			return nil
		},
	}
}
