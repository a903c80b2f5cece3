package notify

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/denysvitali/ladeklubben-cli/cmd/root"
	"github.com/denysvitali/ladeklubben-cli/managed"
)

var (
	onBegin bool
	onEnd   bool
)

var NotifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Manage the e-mail notifications of your own charger",
	Long: `Manage who gets an e-mail when a charge session begins or ends on a charger you own.`,
}

var listCmd = &cobra.Command{
	Use:   "list <station-id>",
	Short: "List the notification addresses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		charger, err := loadCharger(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printNotifications(charger.Notifications())
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:     "set <station-id> <email>",
	Short:   "Add an address or change its events",
	Example: `  lk notify set 1234 me@example.com --begin=false --end`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		charger, err := loadCharger(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := charger.AddOrUpdateNotification(cmd.Context(), args[1], onBegin, onEnd); err != nil {
			return err
		}
		printNotifications(charger.Notifications())
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <station-id> <email>",
	Aliases: []string{"delete"},
	Short:   "Remove an address",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		charger, err := loadCharger(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := charger.DeleteNotification(cmd.Context(), args[1]); err != nil {
			return err
		}
		printNotifications(charger.Notifications())
		return nil
	},
}

func init() {
	setCmd.Flags().BoolVar(&onBegin, "begin", true, "Notify when a session begins")
	setCmd.Flags().BoolVar(&onEnd, "end", true, "Notify when a session ends")

	NotifyCmd.AddCommand(listCmd, setCmd, rmCmd)
	root.RootCmd.AddCommand(NotifyCmd)
}

func loadCharger(ctx context.Context, stationID string) (*managed.Charger, error) {
	charger, err := root.OwnedCharger(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if err := charger.LoadNotifications(ctx); err != nil {
		return nil, fmt.Errorf("failed to get notification setup: %w", err)
	}
	return charger, nil
}

func printNotifications(ns []managed.Notification) {
	if len(ns) == 0 {
		fmt.Println("No notifications set up.")
		return
	}

	check := func(b bool) string {
		if b {
			return "✓"
		}
		return "-"
	}

	var rows [][]string
	for _, n := range ns {
		rows = append(rows, []string{n.Email, check(n.OnBegin), check(n.OnEnd)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers("EMAIL", "BEGIN", "END").
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
}
