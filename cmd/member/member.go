package member

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/denysvitali/ladeklubben-cli/cmd/root"
	"github.com/denysvitali/ladeklubben-cli/pricing"
)

var MemberCmd = &cobra.Command{
	Use:   "member",
	Short: "Show your member discounts",
	Long:  `Show the stations where one of your guest groups gives you a discount.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		members := root.GetMembers()
		if members.Len() == 0 {
			fmt.Println("You are not a member of any guest group.")
			return nil
		}

		var rows [][]string
		for _, id := range members.Stations() {
			rows = append(rows, profileRow(id, members.Lookup(id)))
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
			Headers("STATION", "DISCOUNT", "FLAT", "FREE").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1)
				}
				baseStyle := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
				if col > 0 {
					return baseStyle.AlignHorizontal(lipgloss.Center)
				}
				return baseStyle
			}).
			Rows(rows...)

		fmt.Println(t)
		return nil
	},
}

func init() {
	root.RootCmd.AddCommand(MemberCmd)
}

func profileRow(stationID string, p pricing.MemberProfile) []string {
	check := func(b bool) string {
		if b {
			return "✓"
		}
		return "-"
	}
	return []string{
		stationID,
		fmt.Sprintf("%d%%", p.DiscountTariff),
		check(p.Flat),
		check(p.Free),
	}
}
