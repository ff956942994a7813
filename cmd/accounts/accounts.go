// Package accounts provides CLI commands for Beam account management.
package accounts

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soniclabs/beamkit/internal/config"
	"github.com/soniclabs/beamkit/internal/control"
	"github.com/soniclabs/beamkit/internal/output"
)

// NewCommand returns the accounts command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage Beam accounts and credentials",
		Long: `Log in to Beam accounts, switch between them, and inspect usage.

An access token is created in the Beam dashboard under Account > API tokens.`,
	}

	cmd.AddCommand(newLoginCommand())
	cmd.AddCommand(newLogoutCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newCurrentCommand())
	cmd.AddCommand(newSwitchCommand())
	cmd.AddCommand(newStatsCommand())

	return cmd
}

func newLoginCommand() *cobra.Command {
	var alias string
	cmd := &cobra.Command{
		Use:   "login <access-token>",
		Short: "Log in with an account access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := args[0]

			client := control.NewClient(token)
			me, err := client.Me(cmd.Context())
			if err != nil {
				return fmt.Errorf("token rejected: %w", err)
			}

			if alias == "" {
				alias = "default"
			}
			store, err := config.Open(config.DefaultDir())
			if err != nil {
				return err
			}
			store.SetAccount(alias, token)
			if err := store.Save(); err != nil {
				return err
			}

			output.Success("Logged in to %s as %s (account %s)", me.Account.Name, me.User.Email, alias)
			return nil
		},
	}
	cmd.Flags().StringVar(&alias, "alias", "", "Local alias for the account (default \"default\")")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the current account's stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Open(config.DefaultDir())
			if err != nil {
				return err
			}
			current := store.CurrentAccount()
			if current == "" {
				fmt.Println("Not logged in.")
				return nil
			}
			store.RemoveAccount(current)
			if err := store.Save(); err != nil {
				return err
			}
			output.Success("Logged out of %s", current)
			return nil
		},
	}
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List locally configured accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Open(config.DefaultDir())
			if err != nil {
				return err
			}
			names := store.Accounts()
			if len(names) == 0 {
				fmt.Println("No accounts configured. Run: beam accounts login <access-token>")
				return nil
			}
			current := store.CurrentAccount()
			for _, name := range names {
				marker := " "
				if name == current {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, name)
			}
			return nil
		},
	}
}

func newCurrentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current account",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.RequireAccess()
			if err != nil {
				return err
			}
			client := control.NewClient(store.AccessToken())
			me, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}
			jsonFlag, _ := cmd.Flags().GetBool("json")
			w := output.NewWriter(outputFormat(jsonFlag))
			if w.JSON() {
				return w.WriteJSON(me)
			}
			fmt.Printf("Account: %s (%s)\n", me.Account.Name, me.Account.ID)
			fmt.Printf("User:    %s\n", me.User.Email)
			fmt.Printf("Alias:   %s\n", store.CurrentAccount())
			return nil
		},
	}
}

func newSwitchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <alias>",
		Short: "Switch to another configured account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Open(config.DefaultDir())
			if err != nil {
				return err
			}
			name := args[0]
			found := false
			for _, n := range store.Accounts() {
				if n == name {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("unknown account %q — see 'beam accounts list'", name)
			}
			store.SetCurrentAccount(name)
			if err := store.Save(); err != nil {
				return err
			}
			output.Success("Switched to account %s", name)
			return nil
		},
	}
}

func newStatsCommand() *cobra.Command {
	var (
		unit  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate account stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.RequireAccess()
			if err != nil {
				return err
			}
			client := control.NewClient(store.AccessToken())
			me, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}
			intervals, err := client.AccountStats(cmd.Context(), me.Account.ID, unit, limit)
			if err != nil {
				return err
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			w := output.NewWriter(outputFormat(jsonFlag))
			if w.JSON() {
				return w.WriteJSON(intervals)
			}
			printIntervals(intervals)
			return nil
		},
	}
	cmd.Flags().StringVar(&unit, "unit", "hour", "Aggregation unit: minute | hour | day | month")
	cmd.Flags().IntVar(&limit, "limit", 24, "Number of intervals to fetch")
	return cmd
}

func printIntervals(intervals []control.StatsInterval) {
	if len(intervals) == 0 {
		fmt.Println("No stats for this period.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "INTERVAL\tMESSAGES\tDATA\tPEAK CONN\tPEAK CHANNELS\n")
	for _, iv := range intervals {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n",
			iv.IntervalID, iv.Messages.All.Count, iv.Messages.All.Data,
			iv.Connections.Peak, iv.Channels.Peak)
	}
	w.Flush()
}

func outputFormat(jsonFlag bool) output.Format {
	if jsonFlag {
		return output.FormatJSON
	}
	return output.FormatText
}
