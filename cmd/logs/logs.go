// Package logs provides CLI commands for streaming app lifecycle logs.
package logs

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soniclabs/beamkit/internal/config"
	"github.com/soniclabs/beamkit/internal/realtime"
)

// metaLogChannel carries connection, channel, and error events for an app.
const metaLogChannel = "[meta]log"

// NewCommand returns the logs command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Stream app lifecycle logs",
		Long:  "Tail the app's meta log channel: connection events, channel lifecycle, and errors.",
	}

	cmd.AddCommand(newTailCommand())

	return cmd
}

func newTailCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tail",
		Short: "Stream log events until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, key, err := config.RequireAppKey()
			if err != nil {
				return err
			}

			client := realtime.NewClient(key)
			if err := client.Connect(cmd.Context()); err != nil {
				return err
			}
			defer client.Close()

			msgs, err := client.Subscribe(cmd.Context(), metaLogChannel)
			if err != nil {
				return err
			}

			fmt.Println("Tailing app logs. Press Ctrl-C to stop.")
			for msg := range msgs {
				fmt.Printf("%s %s %s\n", msg.Time().Format("15:04:05.000"), msg.Name, string(msg.Data))
			}
			return cmd.Context().Err()
		},
	}
}
