// Package bench provides load-generation commands against the Beam
// realtime service.
package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/soniclabs/beamkit/internal/config"
	"github.com/soniclabs/beamkit/internal/progress"
	"github.com/soniclabs/beamkit/internal/realtime"
)

// NewCommand returns the bench command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark publish and subscribe throughput",
	}

	cmd.AddCommand(newPublisherCommand())
	cmd.AddCommand(newSubscriberCommand())

	return cmd
}

func newPublisherCommand() *cobra.Command {
	var (
		channel  string
		count    int
		size     int
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "publisher",
		Short: "Publish a stream of test messages and report throughput",
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

			payload, err := json.Marshal(map[string]any{
				"fill": strings.Repeat("x", size),
			})
			if err != nil {
				return err
			}

			bar := progress.New("publishing", count)
			start := time.Now()
			sent := 0
			for i := 0; i < count; i++ {
				if err := client.Publish(cmd.Context(), channel, "bench", payload); err != nil {
					if cmd.Context().Err() != nil {
						break
					}
					return err
				}
				sent++
				bar.Increment(1)
				if interval > 0 {
					select {
					case <-cmd.Context().Done():
						i = count
					case <-time.After(interval):
					}
				}
			}
			elapsed := time.Since(start)
			bar.Finish(fmt.Sprintf("published %d messages in %s (%.0f msg/s)",
				sent, elapsed.Round(time.Millisecond), float64(sent)/elapsed.Seconds()))
			fmt.Printf("published %d messages in %s\n", sent, elapsed.Round(time.Millisecond))
			return cmd.Context().Err()
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "bench", "Channel to publish to")
	cmd.Flags().IntVar(&count, "count", 1000, "Number of messages to publish")
	cmd.Flags().IntVar(&size, "size", 64, "Payload size in bytes")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Pause between messages")
	return cmd
}

func newSubscriberCommand() *cobra.Command {
	var (
		channel string
		window  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "subscriber",
		Short: "Subscribe to a channel and report received throughput",
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

			ctx := cmd.Context()
			if window > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, window)
				defer cancel()
			}

			msgs, err := client.Subscribe(ctx, channel)
			if err != nil {
				return err
			}

			spin := progress.NewSpinner(fmt.Sprintf("receiving on %s", channel))
			spin.Start()
			start := time.Now()
			received := 0
			var bytes int64
			for msg := range msgs {
				received++
				bytes += int64(len(msg.Data))
			}
			elapsed := time.Since(start)
			spin.Stop(fmt.Sprintf("received %d messages", received))

			rate := 0.0
			if elapsed.Seconds() > 0 {
				rate = float64(received) / elapsed.Seconds()
			}
			fmt.Printf("received %d messages (%d bytes) in %s (%.0f msg/s)\n",
				received, bytes, elapsed.Round(time.Millisecond), rate)
			if cmd.Context().Err() != nil {
				return cmd.Context().Err()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "bench", "Channel to subscribe to")
	cmd.Flags().DurationVar(&window, "window", 0, "Stop after this duration (0 runs until Ctrl-C)")
	return cmd
}
