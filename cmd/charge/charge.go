package charge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/denysvitali/ladeklubben-cli/cmd/root"
	"github.com/denysvitali/ladeklubben-cli/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	reservedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	chargingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("82"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
)

var errReservationExpired = errors.New("reservation expired before charging started")

const expiryGrace = 3 * time.Second

var ChargeCmd = &cobra.Command{
	Use:   "charge [station-id]",
	Short: "Reserve a public charger and follow the charge session",
	Long: `Reserve a public charger and wait for the car to be plugged in.

While reserved, a start is attempted every 5 seconds, so the session begins as
soon as the car is connected. Once charging, power, energy and cost are shown
live. Press Ctrl+C to stop charging and exit.`,
	Example: `  # Reserve the configured station
  lk charge

  # Reserve a specific station
  lk charge 1234`,
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

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		charger, err := client.GetPublicCharger(ctx, stationID)
		if err != nil {
			return err
		}

		registry := session.NewRegistry(context.Background(), client, session.Options{
			Notifier: root.Notifier{},
			Members:  root.GetMembers(),
		})
		defer registry.Close()

		controller := registry.Get(*charger)
		fmt.Println(titleStyle.Render(fmt.Sprintf("STATION %s · %s", charger.StationID, charger.City())))
		fmt.Printf("Price: %s %s/kWh\n", controller.CurrentPrice(), charger.Prices.Valuta)

		return follow(ctx, controller)
	},
}

func init() {
	root.RootCmd.AddCommand(ChargeCmd)
}

// follow claims the charger and renders every snapshot until the reservation runs
// out or the user interrupts. An interrupt while charging stops the session.
func follow(ctx context.Context, controller *session.Controller) error {
	updates := make(chan session.Snapshot, 1)
	unsubscribe := controller.Subscribe(func(s session.Snapshot) {
		// keep only the latest snapshot
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- s:
		default:
		}
	})
	defer unsubscribe()

	if err := controller.Claim(ctx); err != nil {
		return err
	}
	fmt.Println(hintStyle.Render("Plug in the car. Press Ctrl+C to stop."))

	// the last countdown tick still makes a start attempt after the reservation is dropped
	var expired <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			if controller.Snapshot().Active {
				if err := controller.StopCharge(context.Background()); err != nil {
					return err
				}
				fmt.Println("✅ Charging stopped")
			}
			return nil
		case s := <-updates:
			render(s)
			if s.State == session.Idle && expired == nil {
				expired = time.After(expiryGrace)
			} else if s.State != session.Idle {
				expired = nil
			}
		case <-expired:
			fmt.Println()
			return errReservationExpired
		}
	}
}

func render(s session.Snapshot) {
	switch s.State {
	case session.Reserved:
		fmt.Printf("\r\033[K%s %ds left",
			reservedStyle.Render("⏳ Reserved"), s.ClaimTimeout)
	case session.Charging:
		fmt.Printf("\r\033[K%s %.2f kW  %.2f kWh  %.2f  %s",
			chargingStyle.Render("⚡ Charging"), s.Speed, s.Consumption, s.Price, formatSeconds(s.Duration))
	}
}

func formatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}
