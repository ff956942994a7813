// Package channels provides CLI commands for Beam channel operations:
// publish, subscribe, history, presence, and occupancy.
package channels

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/soniclabs/beamkit/internal/config"
	"github.com/soniclabs/beamkit/internal/output"
	"github.com/soniclabs/beamkit/internal/realtime"
)

// NewCommand returns the channels command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "Publish, subscribe, and inspect channels",
		Long:  "Interact with Beam pub/sub channels: publish messages, stream live messages, and inspect history, presence, and occupancy.",
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newPublishCommand())
	cmd.AddCommand(newSubscribeCommand())
	cmd.AddCommand(newHistoryCommand())
	cmd.AddCommand(newOccupancyCommand())
	cmd.AddCommand(newPresenceCommand())

	return cmd
}

func newListCommand() *cobra.Command {
	var (
		prefix string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, key, err := config.RequireAppKey()
			if err != nil {
				return err
			}
			rest := realtime.NewREST(key)
			chans, err := rest.ListChannels(cmd.Context(), prefix, limit)
			if err != nil {
				return err
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				return output.NewWriter(output.FormatJSON).WriteJSON(chans)
			}
			if len(chans) == 0 {
				fmt.Println("No active channels.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "CHANNEL\tCONNECTIONS\tPUBLISHERS\tSUBSCRIBERS\n")
			for _, c := range chans {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\n",
					c.Name, c.Occupancy.Connections, c.Occupancy.Publishers, c.Occupancy.Subscribers)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only list channels with this name prefix")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of channels to return")
	return cmd
}

func newPublishCommand() *cobra.Command {
	var (
		name  string
		count int
		delay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "publish <channel> <message>",
		Short: "Publish a message to a channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			channel, message := args[0], args[1]
			_, key, err := config.RequireAppKey()
			if err != nil {
				return err
			}
			data := toJSONData(message)

			rest := realtime.NewREST(key)
			for i := 0; i < count; i++ {
				if i > 0 && delay > 0 {
					select {
					case <-time.After(delay):
					case <-cmd.Context().Done():
						return cmd.Context().Err()
					}
				}
				if err := rest.Publish(cmd.Context(), channel, name, data); err != nil {
					return err
				}
			}
			output.Success("Published %d message(s) to %s", count, channel)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "message", "Event name of the published message")
	cmd.Flags().IntVar(&count, "count", 1, "Number of copies to publish")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Delay between copies (e.g. 100ms)")
	return cmd
}

func newSubscribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <channel>",
		Short: "Stream messages from a channel until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			channel := args[0]
			_, key, err := config.RequireAppKey()
			if err != nil {
				return err
			}

			client := realtime.NewClient(key)
			if err := client.Connect(cmd.Context()); err != nil {
				return err
			}
			defer client.Close()

			msgs, err := client.Subscribe(cmd.Context(), channel)
			if err != nil {
				return err
			}

			fmt.Printf("Subscribed to %s. Press Ctrl-C to stop.\n", channel)
			for msg := range msgs {
				printMessage(channel, msg)
			}
			return cmd.Context().Err()
		},
	}
}

func newHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <channel>",
		Short: "Show recent messages of a channel, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, key, err := config.RequireAppKey()
			if err != nil {
				return err
			}
			rest := realtime.NewREST(key)
			msgs, err := rest.History(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				return output.NewWriter(output.FormatJSON).WriteJSON(msgs)
			}
			if len(msgs) == 0 {
				fmt.Println("No messages.")
				return nil
			}
			for _, msg := range msgs {
				printMessage(args[0], msg)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 25, "Maximum number of messages to fetch")
	return cmd
}

func newOccupancyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "occupancy <channel>",
		Short: "Show live occupancy metrics of a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, key, err := config.RequireAppKey()
			if err != nil {
				return err
			}
			rest := realtime.NewREST(key)
			occ, err := rest.ChannelOccupancy(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				return output.NewWriter(output.FormatJSON).WriteJSON(occ)
			}
			fmt.Printf("Connections:      %d\n", occ.Connections)
			fmt.Printf("Publishers:       %d\n", occ.Publishers)
			fmt.Printf("Subscribers:      %d\n", occ.Subscribers)
			fmt.Printf("Presence members: %d\n", occ.PresenceMembers)
			return nil
		},
	}
}

func newPresenceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presence <channel>",
		Short: "Show the current presence set of a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, key, err := config.RequireAppKey()
			if err != nil {
				return err
			}
			rest := realtime.NewREST(key)
			members, err := rest.Presence(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				return output.NewWriter(output.FormatJSON).WriteJSON(members)
			}
			if len(members) == 0 {
				fmt.Println("Nobody present.")
				return nil
			}
			for _, m := range members {
				fmt.Printf("%s\t%s\n", m.ClientID, string(m.Data))
			}
			return nil
		},
	}
}

// printMessage renders one message as "[time] channel name: data".
func printMessage(channel string, msg realtime.Message) {
	ts := msg.Time().Format("15:04:05.000")
	fmt.Printf("%s %s %s: %s\n",
		color.New(color.Faint).Sprintf("[%s]", ts),
		color.New(color.FgCyan).Sprint(channel),
		msg.Name, string(msg.Data))
}

// toJSONData passes valid JSON through untouched and quotes everything else
// as a JSON string.
func toJSONData(message string) []byte {
	if json.Valid([]byte(message)) {
		return []byte(message)
	}
	quoted, _ := json.Marshal(message)
	return quoted
}
