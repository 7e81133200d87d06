package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/fittrack/internal/datastore"
)

var chartCmd = LeafCommand{
	Use:   "chart",
	Short: "Show calories burned over the last seven days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUserStore(cmd.Context(), userFlag(cmd), "", func(s *datastore.Store) error {
			return runChart(cmd, s)
		})
	},
}.Build()

func runChart(cmd *cobra.Command, s *datastore.Store) error {
	series, err := s.ChartSeries(cmdContext(cmd))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), renderChart(series))
	return nil
}
