// Package autostart starts a charge session at a public charger once price,
// time and location conditions are met.
package autostart

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/denysvitali/ladeklubben-cli/lk"
	"github.com/denysvitali/ladeklubben-cli/pricing"
	"github.com/denysvitali/ladeklubben-cli/schedule"
	"github.com/denysvitali/ladeklubben-cli/session"
)

var log = logrus.StandardLogger()

type API interface {
	GetPublicCharger(ctx context.Context, stationID string) (*lk.PublicCharger, error)
	Claim(ctx context.Context, stationID string) (int, error)
	StartCharge(ctx context.Context, stationID string) error
}

var _ API = (*lk.Client)(nil)

// Conditions that must all hold before a start is attempted. Zero values disable a check.
type Conditions struct {
	// MaxPrice is the highest member price per kWh, including VAT
	MaxPrice decimal.Decimal
	// Windows limit the attempts to these weekly intervals
	Windows []schedule.Window
	// Home and MaxDistanceKm limit the attempts to chargers close to home
	Home          lk.LocationConfig
	MaxDistanceKm float64
}

type Outcome int

const (
	Unknown Outcome = iota
	Started
	AlreadyCharging
	Closed
	OutsideWindow
	TooExpensive
	TooFar
	NotConnected
)

func (o Outcome) String() string {
	switch o {
	case Started:
		return "started"
	case AlreadyCharging:
		return "already charging"
	case Closed:
		return "charger closed"
	case OutsideWindow:
		return "outside charging window"
	case TooExpensive:
		return "price too high"
	case TooFar:
		return "charger too far away"
	case NotConnected:
		return "car not connected"
	}
	return "unknown"
}

type Service struct {
	api       API
	members   session.MemberLookup
	stationID string
	conds     Conditions
	clock     clockwork.Clock
}

func NewService(api API, members session.MemberLookup, stationID string, conds Conditions) *Service {
	return &Service{
		api:       api,
		members:   members,
		stationID: stationID,
		conds:     conds,
		clock:     clockwork.NewRealClock(),
	}
}

func (s *Service) SetClock(clock clockwork.Clock) {
	s.clock = clock
}

// TryAutostart checks the conditions and, when they hold, claims the charger and starts charging.
// A start rejected by the charger means no car is connected and is not an error.
func (s *Service) TryAutostart(ctx context.Context) (Outcome, error) {
	log.Debugf("Checking autostart conditions for %s", s.stationID)

	charger, err := s.api.GetPublicCharger(ctx, s.stationID)
	if err != nil {
		return Unknown, fmt.Errorf("failed to get charger: %w", err)
	}

	if outcome, ok := s.check(*charger); !ok {
		log.Infof("Not starting on %s: %s", s.stationID, outcome)
		return outcome, nil
	}

	log.Info("All conditions met, claiming charger...")
	if _, err := s.api.Claim(ctx, s.stationID); err != nil {
		return Unknown, fmt.Errorf("failed to claim charger: %w", err)
	}

	if err := s.api.StartCharge(ctx, s.stationID); err != nil {
		log.Warnf("Start on %s rejected, is the car plugged in? %v", s.stationID, err)
		return NotConnected, nil
	}

	log.Infof("✅ Successfully started charging on %s", s.stationID)
	return Started, nil
}

func (s *Service) check(charger lk.PublicCharger) (Outcome, bool) {
	switch charger.Connector {
	case lk.ConnectorStatusCharging, lk.ConnectorStatusSuspendedEV, lk.ConnectorStatusFinishing:
		return AlreadyCharging, false
	}

	now := s.clock.Now()
	if !charger.IsOpen(now) {
		return Closed, false
	}

	if len(s.conds.Windows) > 0 && !inAnyWindow(s.conds.Windows, now) {
		return OutsideWindow, false
	}

	if s.conds.MaxPrice.IsPositive() {
		profile := pricing.DefaultMemberProfile()
		if s.members != nil {
			profile = s.members.Lookup(charger.StationID)
		}
		price := pricing.Calculate(charger.Prices, &profile, charger.EnergyPrices.Current()).Round(2)
		log.Debugf("Member price on %s: %s (max %s)", charger.StationID, price, s.conds.MaxPrice)
		if price.GreaterThan(s.conds.MaxPrice) {
			return TooExpensive, false
		}
	}

	if s.conds.MaxDistanceKm > 0 && s.conds.Home.IsSet() {
		distance := charger.DistanceKm(s.conds.Home.Latitude, s.conds.Home.Longitude)
		log.Debugf("Distance from home: %.1f km", distance)
		if distance > s.conds.MaxDistanceKm {
			return TooFar, false
		}
	}

	return Started, true
}

func inAnyWindow(windows []schedule.Window, t time.Time) bool {
	for _, w := range windows {
		if w.Contains(t) {
			return true
		}
	}
	return false
}
