package livedata

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/denysvitali/ladeklubben-cli/cmd/root"
	"github.com/denysvitali/ladeklubben-cli/lk"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1).
			MarginBottom(1)

	sparklineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	chargingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("82"))

	idleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			MarginTop(1)
)

var (
	interval int
	once     bool
)

var LiveDataCmd = &cobra.Command{
	Use:   "live-data [station-id]",
	Short: "Display live charging data",
	Long: `Display the running charge session of a charger: power, energy charged,
cost and elapsed time. By default, updates every 5 seconds.

Shows a sparkline graph of the charging power over time.`,
	Example: `  # Live data of the configured station
  lk live-data

  # Get data once and exit
  lk live-data 1234 --once

  # Update every 10 seconds
  lk live-data --interval 10`,
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
		if interval <= 0 {
			return fmt.Errorf("interval must be positive")
		}

		root.GetLogger().Debugf("Getting live data for %s", stationID)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		history := NewHistory(maxHistorySize)
		ticker := time.NewTicker(time.Duration(interval) * time.Second)
		defer ticker.Stop()

		for {
			s, err := client.GetActiveSession(ctx, stationID)
			if err != nil {
				return fmt.Errorf("failed to get live data: %w", err)
			}

			now := time.Now()
			history.Record(s.Power, now)
			printLiveData(stationID, s, history, now)

			if once {
				return nil
			}

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	},
}

func init() {
	LiveDataCmd.Flags().IntVar(&interval, "interval", 5, "Update interval in seconds")
	LiveDataCmd.Flags().BoolVar(&once, "once", false, "Get data once and exit")

	root.RootCmd.AddCommand(LiveDataCmd)
}

// sessionCost parses the cost sent as text, a malformed value is zero
func sessionCost(cost string) decimal.Decimal {
	d, err := decimal.NewFromString(cost)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func printLiveData(stationID string, s *lk.ActiveSession, history *History, now time.Time) {
	if !once {
		fmt.Print("\033[H\033[2J")
	}

	fmt.Println(titleStyle.Render("LIVE CHARGING DATA · " + stationID))

	status := idleStyle.Render("⏸ Idle")
	if s.Power > 0 {
		status = chargingStyle.Render("⚡ Charging")
	}

	elapsed := time.Duration(0)
	if s.Started > 0 {
		elapsed = now.Sub(time.Unix(s.Started, 0))
	}

	rows := [][]string{
		{"Status", status},
		{"Power", fmt.Sprintf("%.2f kW", s.Power)},
		{"Energy", fmt.Sprintf("%.2f kWh", s.Consumption)},
		{"Cost", sessionCost(s.Cost).StringFixed(2)},
		{"Elapsed", formatDuration(elapsed)},
		{"Updated", now.Format("15:04:05")},
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			baseStyle := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if col == 0 {
				return baseStyle.Foreground(lipgloss.Color("241"))
			}
			return baseStyle.Bold(true)
		}).
		Rows(rows...)

	fmt.Println(t)

	if history.Len() > 1 && !once {
		fmt.Println()
		printPowerTrend(history)
	}

	if !once {
		fmt.Println(hintStyle.Render("Press Ctrl+C to exit"))
	}
}

func printPowerTrend(history *History) {
	values := history.Values()
	minVal, maxVal, avgVal := calculateStats(values)

	fmt.Println(dimStyle.Render("Power Trend"))
	fmt.Println(sparklineStyle.Render(generateSparkline(values)))
	fmt.Println(dimStyle.Render(fmt.Sprintf(
		"Min: %.1f kW  Max: %.1f kW  Avg: %.1f kW  (%s)",
		minVal, maxVal, avgVal, formatDuration(history.Span()),
	)))
}
