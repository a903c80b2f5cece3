package autostart

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/denysvitali/ladeklubben-cli/autostart"
	"github.com/denysvitali/ladeklubben-cli/cmd/root"
	"github.com/denysvitali/ladeklubben-cli/schedule"
)

var (
	maxPrice      string
	windows       []string
	maxDistanceKm float64
	cronSchedule  string
)

var AutostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Automatically start charging when conditions are met",
	Long: `Autostart claims a public charger and starts charging when it is open,
your member price is low enough, the time is inside one of your charging
windows and the charger is close to your configured home location.

The station is the station_id from the configuration.`,
}

var autostartOnceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run the autostart check once",
	Long:  `Check the conditions and start charging if they hold, then exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := createService()
		if err != nil {
			return err
		}
		outcome, err := service.TryAutostart(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Autostart: %s\n", outcome)
		return nil
	},
}

var autostartScheduledCmd = &cobra.Command{
	Use:   "scheduled",
	Short: "Run the autostart check on a cron schedule",
	Long:  `Run the autostart check according to a cron schedule until interrupted.`,
	Example: `  # Every 5 minutes at night, if the price is at most 2.50
  lk autostart scheduled --window 00:00-06:00:Every --max-price 2.50`,
	RunE: runScheduled,
}

func init() {
	AutostartCmd.PersistentFlags().StringVar(&maxPrice, "max-price", "", "Highest member price per kWh including VAT")
	AutostartCmd.PersistentFlags().StringSliceVar(&windows, "window", nil, "Charging window HH:MM-HH:MM:Days, may be repeated")
	AutostartCmd.PersistentFlags().Float64Var(&maxDistanceKm, "max-distance", 0, "Only start when the charger is within this many km of home")

	autostartScheduledCmd.Flags().StringVar(&cronSchedule, "cron", "*/5 * * * *", "Cron schedule (default: every 5 minutes)")

	AutostartCmd.AddCommand(autostartOnceCmd, autostartScheduledCmd)
	root.RootCmd.AddCommand(AutostartCmd)
}

func runScheduled(cmd *cobra.Command, args []string) error {
	// embedded boards may start without a set clock
	waitForTimeSync()

	service, err := createService()
	if err != nil {
		return err
	}

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
			outcome, err := service.TryAutostart(ctx)
			if err != nil {
				root.GetLogger().Errorf("Autostart failed: %v", err)
				return
			}
			root.GetLogger().Infof("Autostart: %s", outcome)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	fmt.Printf("Starting scheduled autostart with cron: %s\n", cronSchedule)
	s.Start()

	<-ctx.Done()
	fmt.Println("\nShutting down scheduler...")
	return nil
}

func createService() (*autostart.Service, error) {
	cfg := root.GetConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	client := root.GetClient()
	if client == nil {
		return nil, fmt.Errorf("client not initialized")
	}
	stationID, err := root.StationID(nil)
	if err != nil {
		return nil, err
	}

	conds, err := parseConditions(maxPrice, windows, maxDistanceKm)
	if err != nil {
		return nil, err
	}
	conds.Home = cfg.Location
	if conds.MaxDistanceKm > 0 && !cfg.Location.IsSet() {
		return nil, fmt.Errorf("--max-distance needs location.latitude and location.longitude in config")
	}

	return autostart.NewService(client, root.GetMembers(), stationID, conds), nil
}

func parseConditions(price string, windowSpecs []string, distance float64) (autostart.Conditions, error) {
	var conds autostart.Conditions
	if price != "" {
		p, err := decimal.NewFromString(price)
		if err != nil {
			return conds, fmt.Errorf("invalid max price %q: %w", price, err)
		}
		conds.MaxPrice = p
	}
	for _, text := range windowSpecs {
		d, err := schedule.ParseWindow(text)
		if err != nil {
			return conds, fmt.Errorf("failed to parse window '%s': %w", text, err)
		}
		w := schedule.ToServer(d)
		if err := schedule.CheckWindow(w).Err(); err != nil {
			return conds, fmt.Errorf("window '%s': %w", text, err)
		}
		conds.Windows = append(conds.Windows, w)
	}
	conds.MaxDistanceKm = distance
	return conds, nil
}

func waitForTimeSync() {
	epochPlus1Year := time.Unix(0, 0).Add(365 * 24 * time.Hour)
	for time.Now().Before(epochPlus1Year) {
		root.GetLogger().Debug("Waiting for time to be set...")
		time.Sleep(1 * time.Second)
	}
}
