// Package stats provides CLI commands for Beam usage statistics.
package stats

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soniclabs/beamkit/internal/config"
	"github.com/soniclabs/beamkit/internal/control"
	"github.com/soniclabs/beamkit/internal/export"
	"github.com/soniclabs/beamkit/internal/output"
)

// NewCommand returns the stats command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Inspect app usage statistics",
	}

	cmd.AddCommand(newAppCommand())
	cmd.AddCommand(newExportCommand())

	return cmd
}

func newAppCommand() *cobra.Command {
	var (
		unit  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "app",
		Short: "Show usage statistics for the current app",
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
			intervals, err := client.AppStats(cmd.Context(), appID, unit, limit)
			if err != nil {
				return err
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				return output.NewWriter(output.FormatJSON).WriteJSON(intervals)
			}
			printIntervals(intervals)
			return nil
		},
	}
	cmd.Flags().StringVar(&unit, "unit", "hour", "Interval unit (minute, hour, day, month)")
	cmd.Flags().IntVar(&limit, "limit", 24, "Maximum number of intervals to return")
	return cmd
}

func newExportCommand() *cobra.Command {
	var (
		unit    string
		limit   int
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export app usage statistics to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !strings.HasSuffix(outPath, ".xlsx") {
				return fmt.Errorf("output file must have a .xlsx extension: %s", outPath)
			}
			store, err := config.RequireAccess()
			if err != nil {
				return err
			}
			appID := store.CurrentAppID()
			if appID == "" {
				return fmt.Errorf("no app selected — run: beam apps switch <app-id>")
			}
			client := control.NewClient(store.AccessToken())
			intervals, err := client.AppStats(cmd.Context(), appID, unit, limit)
			if err != nil {
				return err
			}
			if err := export.StatsWorkbook(outPath, intervals); err != nil {
				return err
			}
			output.Success("Exported %d intervals to %s", len(intervals), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&unit, "unit", "day", "Interval unit (minute, hour, day, month)")
	cmd.Flags().IntVar(&limit, "limit", 30, "Maximum number of intervals to export")
	cmd.Flags().StringVar(&outPath, "output", "stats.xlsx", "Path of the workbook to write")
	return cmd
}

func printIntervals(intervals []control.StatsInterval) {
	if len(intervals) == 0 {
		fmt.Println("No stats for this period.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INTERVAL\tMESSAGES\tDATA (B)\tPEAK CONNS\tMEAN CONNS")
	for _, iv := range intervals {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n",
			iv.IntervalID, iv.Messages.All.Count, iv.Messages.All.Data,
			iv.Connections.Peak, iv.Connections.Mean)
	}
	w.Flush()
}
