package price

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denysvitali/ladeklubben-cli/cmd/root"
	"github.com/denysvitali/ladeklubben-cli/pricing"
)

var (
	includeVAT bool
	nominal    float64
	minimum    float64
	fallback   float64
	followSpot bool
)

var PriceCmd = &cobra.Command{
	Use:   "price",
	Short: "Show or change the list price of your own charger",
}

var getCmd = &cobra.Command{
	Use:   "get <station-id>",
	Short: "Show the list price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		charger, err := root.OwnedCharger(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := charger.LoadListPrice(cmd.Context()); err != nil {
			return fmt.Errorf("failed to get list price: %w", err)
		}
		lp, _ := charger.ListPriceView(includeVAT)
		printListPrice(charger.ID(), lp)
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <station-id>",
	Short: "Change the list price",
	Long: `Change the list price of a charger. Values are given per kWh.
With --vat the given values include VAT and it is removed before saving.
Flags that are not given keep their current value.`,
	Example: `  lk price set 1234 --nominal 2.50 --minimum 1 --vat
  lk price set 1234 --nominal 0.40 --follow-spot`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		charger, err := root.OwnedCharger(ctx, args[0])
		if err != nil {
			return err
		}
		if err := charger.LoadListPrice(ctx); err != nil {
			return fmt.Errorf("failed to get list price: %w", err)
		}

		lp, _ := charger.ListPriceView(includeVAT)
		flags := cmd.Flags()
		if flags.Changed("nominal") {
			lp.Nominal = nominal
		}
		if flags.Changed("minimum") {
			lp.Minimum = minimum
		}
		if flags.Changed("fallback") {
			lp.Fallback = fallback
		}
		if flags.Changed("follow-spot") {
			lp.FollowSpot = pricing.FlexBool(followSpot)
		}

		if err := charger.SetListPrice(ctx, lp, includeVAT); err != nil {
			return fmt.Errorf("failed to set list price: %w", err)
		}

		saved, _ := charger.ListPriceView(includeVAT)
		fmt.Println("✅ List price saved")
		printListPrice(charger.ID(), saved)
		return nil
	},
}

func init() {
	PriceCmd.PersistentFlags().BoolVar(&includeVAT, "vat", false, "Prices include VAT")

	setCmd.Flags().Float64Var(&nominal, "nominal", 0, "Price per kWh, or the offset on top of the spot price with --follow-spot")
	setCmd.Flags().Float64Var(&minimum, "minimum", 0, "Minimum price per kWh")
	setCmd.Flags().Float64Var(&fallback, "fallback", 0, "Price per kWh used when no spot price is known")
	setCmd.Flags().BoolVar(&followSpot, "follow-spot", false, "Follow the spot price")

	PriceCmd.AddCommand(getCmd, setCmd)
	root.RootCmd.AddCommand(PriceCmd)
}

func printListPrice(stationID string, lp pricing.PriceInfo) {
	suffix := "excl. VAT"
	if includeVAT {
		suffix = "incl. VAT"
	}
	fmt.Printf("List price of %s (%s)\n", stationID, suffix)
	fmt.Printf("  Nominal:     %.2f %s\n", lp.Nominal, lp.Valuta)
	fmt.Printf("  Minimum:     %.2f %s\n", lp.Minimum, lp.Valuta)
	fmt.Printf("  Fallback:    %.2f %s\n", lp.Fallback, lp.Valuta)
	fmt.Printf("  Follow spot: %t\n", bool(lp.FollowSpot))
}
