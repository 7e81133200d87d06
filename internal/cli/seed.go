package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/fittrack/internal/chart"
	"github.com/dukerupert/fittrack/internal/store"
)

var seedCmd = LeafCommand{
	Use:   "seed",
	Short: "Load demo profile, goal and a week of activity into the database",
	Long:  "Load demo data for --user (default demo). Running it again changes nothing.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return runSeed(cmd, a, userFlag(cmd))
	},
}.Build()

func runSeed(cmd *cobra.Command, a *app, userID string) error {
	if a.mode == modeOffline {
		return fmt.Errorf("seed writes the relational store; offline mode seeds itself")
	}
	if userID == "" {
		userID = "demo"
	}
	err := store.SeedDemo(cmdContext(cmd), store.NewCheckinStore(a.db), store.NewProfileStore(a.db), store.NewGoalStore(a.db),
		userID, a.dates.LastNDays(chart.WindowDays))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Seeded demo data for %s\n", Primary(userID))
	return nil
}
