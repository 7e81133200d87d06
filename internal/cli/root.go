package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "fittrack",
	Short:         "Daily fitness check-ins: water, sleep, meals and activity",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("user", os.Getenv("FITTRACK_USER"), "user id (default: $FITTRACK_USER, or demo in offline mode)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(waterCmd)
	rootCmd.AddCommand(sleepCmd)
	rootCmd.AddCommand(mealsCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

func userFlag(cmd *cobra.Command) string {
	u, _ := cmd.Flags().GetString("user")
	return u
}
