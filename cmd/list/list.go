package list

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/denysvitali/ladeklubben-cli/cmd/root"
	"github.com/denysvitali/ladeklubben-cli/lk"
	"github.com/denysvitali/ladeklubben-cli/membership"
)

var (
	availableOnly bool
	city          string
	limit         int
	watch         bool
	cronSchedule  string
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List public chargers with your member price",
	Long: `List the public chargers of the Ladeklubben network with their status,
opening hours and the price per kWh you pay as a member.

When a home location is configured, chargers are sorted by distance.`,
	Example: `  # List all public chargers
  lk list

  # Only available chargers in Aarhus, the 10 closest
  lk list --available --city Aarhus --limit 10

  # Refresh every minute
  lk list --watch --cron "*/1 * * * *"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := root.GetClient()
		if client == nil {
			return fmt.Errorf("client not initialized")
		}

		if !watch {
			return refresh(cmd.Context(), client, root.GetMembers())
		}
		return runWatch(client, root.GetMembers())
	},
}

func init() {
	ListCmd.Flags().BoolVar(&availableOnly, "available", false, "Only show available chargers")
	ListCmd.Flags().StringVar(&city, "city", "", "Only show chargers in this city")
	ListCmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of chargers to show (0 for all)")
	ListCmd.Flags().BoolVar(&watch, "watch", false, "Keep refreshing the list")
	ListCmd.Flags().StringVar(&cronSchedule, "cron", "*/1 * * * *", "Refresh schedule used with --watch")

	root.RootCmd.AddCommand(ListCmd)
}

// refresh fetches chargers and member prices concurrently and prints the table
func refresh(ctx context.Context, client *lk.Client, members *membership.Registry) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var chargers []lk.PublicCharger
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		chargers, err = client.GetPublicChargers(gctx)
		return err
	})
	g.Go(func() error {
		if err := members.Refresh(gctx, client); err != nil {
			root.GetLogger().Warnf("Showing list prices: %v", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	opts := Options{
		AvailableOnly: availableOnly,
		City:          city,
		Limit:         limit,
		Now:           time.Now(),
	}
	if cfg := root.GetConfig(); cfg != nil {
		opts.Location = cfg.Location
	}

	rows := BuildRows(chargers, members, opts)
	if len(rows) == 0 {
		fmt.Println("No chargers found.")
		return nil
	}
	printChargers(rows, opts.Location.IsSet())
	return nil
}

func runWatch(client *lk.Client, members *membership.Registry) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	defer func() { _ = s.Shutdown() }()

	_, err = s.NewJob(
		gocron.CronJob(cronSchedule, false),
		gocron.NewTask(func() {
			fmt.Print("\033[H\033[2J")
			if err := refresh(ctx, client, members); err != nil {
				root.GetLogger().Errorf("Refresh failed: %v", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	s.Start()
	<-ctx.Done()
	fmt.Println("\nStopping...")
	return nil
}

func printChargers(rows []Row, withDistance bool) {
	headers := []string{"STATION", "CITY", "ADDRESS", "STATUS", "PRICE", "OPEN", "HOURS"}
	if withDistance {
		headers = append(headers, "DISTANCE")
	}

	var cells [][]string
	for _, r := range rows {
		status := "❌"
		if r.Available {
			status = "✅"
		}
		open := "-"
		if r.Open {
			open = "✓"
		}
		line := []string{
			r.StationID,
			r.City,
			r.Address,
			status,
			fmt.Sprintf("%s %s", r.Price, strings.ToUpper(r.Valuta)),
			open,
			r.Hours,
		}
		if withDistance {
			line = append(line, fmt.Sprintf("%.1f km", r.DistanceKm))
		}
		cells = append(cells, line)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1)
			}
			baseStyle := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if col == 3 || col == 5 {
				return baseStyle.AlignHorizontal(lipgloss.Center)
			}
			if col == 4 || col == 7 {
				return baseStyle.AlignHorizontal(lipgloss.Right)
			}
			return baseStyle
		}).
		Rows(cells...)

	fmt.Println(t)
}
