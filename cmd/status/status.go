// Package status reports connectivity to the Beam service endpoints.
package status

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type endpoint struct {
	Name string
	URL  string
}

// NewCommand returns the status command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connectivity to the Beam service",
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoints := []endpoint{
				{Name: "control", URL: envOr("BEAM_CONTROL_URL", "https://control.beam.sh/v1")},
				{Name: "rest", URL: envOr("BEAM_REST_URL", "https://rest.beam.sh")},
			}

			failed := 0
			for _, ep := range endpoints {
				latency, err := probe(cmd.Context(), ep.URL)
				if err != nil {
					color.Red("✗ %-8s %s (%v)", ep.Name, ep.URL, err)
					failed++
					continue
				}
				color.Green("✓ %-8s %s (%s)", ep.Name, ep.URL, latency.Round(time.Millisecond))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d endpoints unreachable", failed, len(endpoints))
			}
			return nil
		},
	}
}

func probe(ctx context.Context, url string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return time.Since(start), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
