// Package session drives the reservation and charge session of a public charger.
//
// A claim starts a one second countdown. Every fifth second of the countdown
// a silent start attempt is made, so plugging in the car while reserved starts
// the session without further input. Once charging, the session telemetry is
// polled every second until the charge is stopped.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/denysvitali/ladeklubben-cli/lk"
	"github.com/denysvitali/ladeklubben-cli/pricing"
)

var log = logrus.StandardLogger()

// ErrClosed is returned when claiming on a closed controller
var ErrClosed = errors.New("session controller closed")

const (
	CountdownInterval = time.Second
	PollInterval      = time.Second
	// startAttemptEvery is the countdown step between silent start attempts
	startAttemptEvery = 5
)

// API is the remote side of a guest charge session
type API interface {
	Claim(ctx context.Context, stationID string) (int, error)
	StartCharge(ctx context.Context, stationID string) error
	StopCharge(ctx context.Context, stationID string) error
	GetActiveSession(ctx context.Context, stationID string) (*lk.ActiveSession, error)
}

var _ API = (*lk.Client)(nil)

// MemberLookup returns the member price profile of a station
type MemberLookup interface {
	Lookup(stationID string) pricing.MemberProfile
}

type Options struct {
	Clock     clockwork.Clock
	Notifier  Notifier
	Selection *Selection
	Members   MemberLookup
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Notifier == nil {
		o.Notifier = LogNotifier{}
	}
	if o.Selection == nil {
		o.Selection = NewSelection()
	}
	return o
}

type Controller struct {
	api       API
	base      context.Context
	clock     clockwork.Clock
	notifier  Notifier
	selection *Selection
	members   MemberLookup

	mu      sync.Mutex
	charger lk.PublicCharger

	reserved     bool
	claimTimeout int
	countdown    *repeater
	countdownGen uint64

	active      bool
	poll        *repeater
	pollGen     uint64
	speed       float64
	consumption float64
	price       float64
	duration    int64

	subscribers map[int]func(Snapshot)
	nextID      int

	// attempts tracks silent start attempts still in flight
	attempts sync.WaitGroup
	closed   bool
}

// NewController creates the controller of one public charger.
// Timers and silent start attempts run under ctx.
func NewController(ctx context.Context, api API, charger lk.PublicCharger, opts Options) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		api:         api,
		base:        ctx,
		clock:       opts.Clock,
		notifier:    opts.Notifier,
		selection:   opts.Selection,
		members:     opts.Members,
		charger:     charger,
		subscribers: map[int]func(Snapshot){},
	}
}

func (c *Controller) StationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.charger.StationID
}

// Charger returns the last known server data of the station
func (c *Controller) Charger() lk.PublicCharger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.charger
}

// UpdateCharger replaces the server data, reservation and session are kept
func (c *Controller) UpdateCharger(charger lk.PublicCharger) {
	c.mu.Lock()
	c.charger = charger
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// CurrentPrice is the member adjusted price per kWh, formatted with two decimals
func (c *Controller) CurrentPrice() string {
	charger := c.Charger()
	profile := pricing.DefaultMemberProfile()
	if c.members != nil {
		profile = c.members.Lookup(charger.StationID)
	}
	return pricing.CurrentPrice(charger.Prices, &profile, charger.EnergyPrices.Current())
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		StationID:    c.charger.StationID,
		State:        Idle,
		Reserved:     c.reserved,
		ClaimTimeout: c.claimTimeout,
		Active:       c.active,
		Speed:        c.speed,
		Consumption:  c.consumption,
		Price:        c.price,
		Duration:     c.duration,
	}
	switch {
	case c.active:
		s.State = Charging
	case c.reserved:
		s.State = Reserved
	}
	return s
}

func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

func (c *Controller) notify(s Snapshot) {
	c.mu.Lock()
	subscribers := make([]func(Snapshot), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subscribers = append(subscribers, fn)
	}
	c.mu.Unlock()

	for _, fn := range subscribers {
		fn(s)
	}
}

// Claim reserves the charger and starts the countdown.
// A claim that fails or grants no time leaves the controller untouched.
func (c *Controller) Claim(ctx context.Context) error {
	c.mu.Lock()
	stationID, closed := c.charger.StationID, c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	timeout, err := c.api.Claim(ctx, stationID)
	if err == nil && timeout <= 0 {
		err = lk.ErrClaimRejected
	}
	if err != nil {
		log.Errorf("Failed to claim charger %s: %v", stationID, err)
		c.notifier.Error(msgClaimFailed)
		return fmt.Errorf("failed to claim charger: %w", err)
	}

	log.Infof("Claimed %s for %d seconds", stationID, timeout)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.stopCountdownLocked()
	c.reserved = true
	c.claimTimeout = timeout
	gen := c.countdownGen
	c.countdown = startRepeater(c.base, c.clock, CountdownInterval, func() {
		c.countdownTick(gen)
	})
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// countdownTick advances the reservation countdown of generation gen.
// Ticks of a replaced or cancelled countdown are ignored.
func (c *Controller) countdownTick(gen uint64) {
	c.mu.Lock()
	if c.countdown == nil || c.countdownGen != gen {
		c.mu.Unlock()
		return
	}

	c.claimTimeout--
	remaining := c.claimTimeout
	if remaining <= 0 {
		c.clearReservationLocked()
	}
	attempt := remaining%startAttemptEvery == 0
	if attempt {
		c.attempts.Add(1)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)

	if attempt {
		go func() {
			defer c.attempts.Done()
			log.Debugf("silent start attempt, %d seconds left", remaining)
			_ = c.StartCharge(c.base, false)
		}()
	}
}

func (c *Controller) stopCountdownLocked() {
	c.countdown.Stop()
	c.countdown = nil
	c.countdownGen++
}

func (c *Controller) clearReservationLocked() {
	c.stopCountdownLocked()
	c.reserved = false
	c.claimTimeout = 0
}

// ClearReservation cancels the countdown and drops the local reservation
func (c *Controller) ClearReservation() {
	c.mu.Lock()
	c.clearReservationLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// StartCharge asks the charger to start. With surfaceErrors a failure is shown to the user,
// otherwise it is only logged and a running countdown keeps going.
func (c *Controller) StartCharge(ctx context.Context, surfaceErrors bool) error {
	stationID := c.StationID()

	if err := c.api.StartCharge(ctx, stationID); err != nil {
		if surfaceErrors {
			log.Warnf("Could not start charging %s: %v", stationID, err)
			c.notifier.Warn(msgStartFailedTitle, msgStartFailed)
		} else {
			log.Debugf("start attempt on %s failed: %v", stationID, err)
		}
		return fmt.Errorf("failed to start charging: %w", err)
	}

	log.Infof("Started charging on %s", stationID)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		log.Warnf("Charging started on %s after the controller was closed, not polling", stationID)
		return nil
	}
	c.clearReservationLocked()
	c.stopPollLocked()
	gen := c.pollGen
	c.poll = startRepeater(c.base, c.clock, PollInterval, func() {
		c.pollTick(gen)
	})
	c.active = true
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.selection.Set(c)
	c.notify(snap)

	c.fetchSession(ctx, gen)
	return nil
}

func (c *Controller) stopPollLocked() {
	c.poll.Stop()
	c.poll = nil
	c.pollGen++
}

func (c *Controller) pollTick(gen uint64) {
	c.mu.Lock()
	current := c.poll != nil && c.pollGen == gen
	c.mu.Unlock()
	if !current {
		return
	}
	c.fetchSession(c.base, gen)
}

// fetchSession loads the session telemetry. Results are dropped when the poll
// of generation gen was stopped while the request was in flight.
func (c *Controller) fetchSession(ctx context.Context, gen uint64) {
	stationID := c.StationID()

	session, err := c.api.GetActiveSession(ctx, stationID)
	if err != nil {
		log.Warnf("Failed to get charge session info of %s: %v", stationID, err)
		return
	}

	price, err := strconv.ParseFloat(session.Cost, 64)
	if err != nil {
		price = 0
	}

	c.mu.Lock()
	if c.poll == nil || c.pollGen != gen {
		c.mu.Unlock()
		return
	}
	c.consumption = session.Consumption
	c.price = price
	c.speed = session.Power
	c.duration = c.clock.Now().Unix() - session.Started
	snap := c.snapshotLocked()
	c.mu.Unlock()

	log.Debugf("charge session info %s: %+v", stationID, session)
	c.notify(snap)
}

// StopCharge asks the charger to stop. On failure polling continues and the error is returned.
func (c *Controller) StopCharge(ctx context.Context) error {
	stationID := c.StationID()

	if err := c.api.StopCharge(ctx, stationID); err != nil {
		log.Errorf("Failed to stop charge on %s: %v", stationID, err)
		c.notifier.Error(msgStopFailed)
		return fmt.Errorf("failed to stop charging: %w", err)
	}

	log.Infof("Stopped charging on %s", stationID)

	c.mu.Lock()
	c.stopPollLocked()
	c.active = false
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.selection.Get() == c {
		c.selection.Clear()
	}
	c.notify(snap)
	return nil
}

// Close cancels both timers and waits for silent start attempts in flight.
// The remote session is left as it is.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	if c.countdown != nil {
		c.clearReservationLocked()
	}
	if c.poll != nil {
		c.stopPollLocked()
	}
	c.mu.Unlock()

	c.attempts.Wait()
}
