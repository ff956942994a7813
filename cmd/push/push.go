// Package push provides CLI commands for push notifications.
package push

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soniclabs/beamkit/internal/config"
	"github.com/soniclabs/beamkit/internal/output"
	"github.com/soniclabs/beamkit/internal/realtime"
)

// NewCommand returns the push command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Send and inspect push notifications",
	}

	cmd.AddCommand(newPublishCommand())
	cmd.AddCommand(newSubscriptionsCommand())

	return cmd
}

func newPublishCommand() *cobra.Command {
	var (
		channel string
		title   string
	)
	cmd := &cobra.Command{
		Use:   "publish <body>",
		Short: "Send a push notification to a channel's subscribers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if channel == "" {
				return fmt.Errorf("--channel is required")
			}
			_, key, err := config.RequireAppKey()
			if err != nil {
				return err
			}
			rest := realtime.NewREST(key)
			if err := rest.PushPublish(cmd.Context(), channel, title, args[0]); err != nil {
				return err
			}
			output.Success("Push sent to %s", channel)
			return nil
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "Channel whose devices receive the push")
	cmd.Flags().StringVar(&title, "title", "Beam", "Notification title")
	return cmd
}

func newSubscriptionsCommand() *cobra.Command {
	var (
		channel string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "List push channel subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, key, err := config.RequireAppKey()
			if err != nil {
				return err
			}
			rest := realtime.NewREST(key)
			subs, err := rest.ListPushSubscriptions(cmd.Context(), channel, limit)
			if err != nil {
				return err
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				return output.NewWriter(output.FormatJSON).WriteJSON(subs)
			}
			if len(subs) == 0 {
				fmt.Println("No push subscriptions.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "CHANNEL\tDEVICE\tCLIENT\n")
			for _, s := range subs {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Channel, s.DeviceID, s.ClientID)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "Filter by channel")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum subscriptions to return")
	return cmd
}
