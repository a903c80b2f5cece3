package start

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denysvitali/ladeklubben-cli/cmd/root"
)

var claim bool

var StartCmd = &cobra.Command{
	Use:   "start [station-id]",
	Short: "Start charging at a public charger",
	Long: `Start a charging session at the specified charger.
If no station ID is provided, the station_id from the configuration is used.
The car must already be connected.`,
	Example: `  # Start charging at the configured station
  lk start

  # Reserve first, then start at a specific station
  lk start 1234 --claim`,
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

		if claim {
			timeout, err := client.Claim(ctx, stationID)
			if err != nil {
				return fmt.Errorf("failed to claim charger: %w", err)
			}
			log.Debugf("Claimed %s for %d seconds", stationID, timeout)
		}

		log.Debugf("Starting charge at %s", stationID)
		if err := client.StartCharge(ctx, stationID); err != nil {
			return fmt.Errorf("failed to start charging: %w", err)
		}

		fmt.Printf("✅ Charging started at %s\n", stationID)
		return nil
	},
}

func init() {
	StartCmd.Flags().BoolVar(&claim, "claim", false, "Reserve the charger before starting")

	root.RootCmd.AddCommand(StartCmd)
}
