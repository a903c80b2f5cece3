package schedules

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/denysvitali/ladeklubben-cli/cmd/root"
	"github.com/denysvitali/ladeklubben-cli/schedule"
)

var kindFlag string

var ScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage the schedules of your own chargers",
	Long: `Manage the free charging (alwayson) and rental (openhours) schedules of a charger you own.

Windows are written as HH:MM-HH:MM:Days, where days is a comma separated list
(Mon,Tue,...) or one of Weekdays, Weekend and Every. A window must end on the
day it starts and may not overlap another window on a shared day.`,
}

var listCmd = &cobra.Command{
	Use:   "list <station-id>",
	Short: "List the windows of a schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printWindows(store)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:     "add <station-id> <window>",
	Short:   "Add a window to a schedule",
	Example: `  lk schedule add 1234 08:00-17:00:Weekdays --kind openhours`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		candidate, err := schedule.ParseWindow(args[1])
		if err != nil {
			return err
		}
		store, err := loadStore(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		saved, err := store.Add(cmd.Context(), candidate)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Added %s %s-%s\n", schedule.FormatDays(saved.Days), saved.StartTime, saved.EndTime)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:     "update <station-id> <window-ref> <window>",
	Short:   "Replace a window of a schedule",
	Long:    `Replace a window, referenced by its number in "schedule list" or by an id prefix.`,
	Example: `  lk schedule update 1234 2 18:00-23:00:Every`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		candidate, err := schedule.ParseWindow(args[2])
		if err != nil {
			return err
		}
		store, err := loadStore(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		id, err := ResolveWindow(store.Displays(), args[1])
		if err != nil {
			return err
		}
		saved, err := store.Update(cmd.Context(), id, candidate)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Updated to %s %s-%s\n", schedule.FormatDays(saved.Days), saved.StartTime, saved.EndTime)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <station-id> <window-ref>",
	Aliases: []string{"delete"},
	Short:   "Remove a window from a schedule",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		id, err := ResolveWindow(store.Displays(), args[1])
		if err != nil {
			return err
		}
		if err := store.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Println("✅ Window removed")
		return nil
	},
}

func init() {
	ScheduleCmd.PersistentFlags().StringVar(&kindFlag, "kind", string(schedule.KindOpenHours), "Schedule kind: alwayson (free charging) or openhours (rental)")

	ScheduleCmd.AddCommand(listCmd, addCmd, updateCmd, rmCmd)
	root.RootCmd.AddCommand(ScheduleCmd)
}

func loadStore(ctx context.Context, stationID string) (*schedule.Store, error) {
	kind, err := schedule.ParseKind(kindFlag)
	if err != nil {
		return nil, err
	}
	charger, err := root.OwnedCharger(ctx, stationID)
	if err != nil {
		return nil, err
	}
	store := charger.Schedule(kind)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func printWindows(store *schedule.Store) {
	displays := store.Displays()
	if len(displays) == 0 {
		fmt.Printf("No %s windows for %s.\n", store.Kind(), store.StationID())
		return
	}

	var rows [][]string
	for i, d := range displays {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			d.ID[:min(len(d.ID), 8)],
			schedule.FormatDays(d.Days),
			d.StartTime,
			d.EndTime,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers("#", "ID", "DAYS", "FROM", "TO").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1)
			}
			return lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
		}).
		Rows(rows...)

	fmt.Println(t)
}
