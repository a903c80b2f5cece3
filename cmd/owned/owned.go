package owned

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/denysvitali/ladeklubben-cli/cmd/root"
	"github.com/denysvitali/ladeklubben-cli/managed"
)

var OwnedCmd = &cobra.Command{
	Use:   "owned",
	Short: "List the chargers you own",
	Long: `List the chargers registered to your account with their location and live status.

Use the station ID with the schedule, price and notify commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := root.GetClient()
		if client == nil {
			return fmt.Errorf("client not initialized")
		}

		chargers := managed.NewChargers(client)
		all, err := chargers.Init(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get owned chargers: %w", err)
		}
		if len(all) == 0 {
			fmt.Println("You do not own any chargers.")
			return nil
		}

		// chargers that fail to load are still listed
		if err := chargers.LoadAll(cmd.Context()); err != nil {
			root.GetLogger().Debugf("some chargers failed to load: %v", err)
		}

		printChargers(all)
		return nil
	},
}

func init() {
	root.RootCmd.AddCommand(OwnedCmd)
}

func printChargers(chargers []*managed.Charger) {
	var rows [][]string
	for _, c := range chargers {
		address, city := "-", "-"
		if l := c.Location(); l != nil {
			address, city = l.Address, l.City
		}
		valid := "-"
		if v, ok := c.Valid(); ok && v {
			valid = "✓"
		} else if ok {
			valid = "✗"
		}
		rows = append(rows, []string{c.ID(), address, city, c.Status(), valid})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers("STATION", "ADDRESS", "CITY", "STATUS", "VALID").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1)
			}
			return lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
		}).
		Rows(rows...)

	fmt.Println(t)
}
