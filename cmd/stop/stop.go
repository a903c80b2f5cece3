package stop

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denysvitali/ladeklubben-cli/cmd/root"
)

var StopCmd = &cobra.Command{
	Use:   "stop [station-id]",
	Short: "Stop charging at a public charger",
	Long: `Stop the active charging session at the specified charger.
If no station ID is provided, the station_id from the configuration is used.`,
	Example: `  # Stop charging at the configured station
  lk stop

  # Stop charging at a specific station
  lk stop 1234`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := root.GetClient()
		if client == nil {
			return fmt.Errorf("client not initialized")
		}
		stationID, err := root.StationID(args)
		if err != nil {
			return err
		}

		log := root.GetLogger()
		ctx := cmd.Context()

		// the session summary is best effort, it may already be gone
		summary, err := client.GetActiveSession(ctx, stationID)
		if err != nil {
			log.Debugf("No session info for %s: %v", stationID, err)
		}

		log.Debugf("Stopping charge at %s", stationID)
		if err := client.StopCharge(ctx, stationID); err != nil {
			return fmt.Errorf("failed to stop charging: %w", err)
		}

		fmt.Printf("✅ Charging stopped at %s\n", stationID)
		if summary != nil {
			fmt.Printf("  Energy: %.2f kWh\n", summary.Consumption)
			fmt.Printf("  Cost:   %s\n", summary.Cost)
		}
		return nil
	},
}

func init() {
	root.RootCmd.AddCommand(StopCmd)
}
