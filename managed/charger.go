// Package managed holds the chargers owned by the logged in user.
package managed

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/denysvitali/ladeklubben-cli/lk"
	"github.com/denysvitali/ladeklubben-cli/pricing"
	"github.com/denysvitali/ladeklubben-cli/schedule"
	"github.com/denysvitali/ladeklubben-cli/state"
)

var log = logrus.StandardLogger()

// API is what an owned charger needs from the backend
type API interface {
	schedule.API
	GetChargepoints(ctx context.Context) ([]string, error)
	GetChargerInfo(ctx context.Context, stationID string) (*lk.LocationInfo, error)
	GetChargeState(ctx context.Context, stationID string) (*lk.ChargeState, error)
	GetValidity(ctx context.Context, stationID string) (bool, error)
	GetListPrice(ctx context.Context, stationID string) (*pricing.PriceInfo, error)
	PutListPrice(ctx context.Context, stationID string, lp pricing.PriceInfo) error
	GetNotificationSetup(ctx context.Context, stationID string) (*lk.NotificationSetup, error)
	PutNotification(ctx context.Context, stationID, email string, event lk.EventType, enabled bool) error
	DeleteNotification(ctx context.Context, stationID, email string, event lk.EventType) error
}

var _ API = (*lk.Client)(nil)

type Charger struct {
	api API
	id  string

	mu          sync.RWMutex
	location    *lk.LocationInfo
	chargeState *lk.ChargeState
	valid       *bool
	listPrice   *pricing.PriceInfo

	alwaysOn      *schedule.Store
	rental        *schedule.Store
	notifications *state.Value[[]Notification]
}

func NewCharger(api API, id string) *Charger {
	return &Charger{
		api:           api,
		id:            id,
		alwaysOn:      schedule.NewStore(api, id, schedule.KindAlwaysOn),
		rental:        schedule.NewStore(api, id, schedule.KindOpenHours),
		notifications: newNotifications(),
	}
}

func (c *Charger) ID() string {
	return c.id
}

// Schedule returns the store of the free charging or the rental schedule
func (c *Charger) Schedule(kind schedule.Kind) *schedule.Store {
	if kind == schedule.KindAlwaysOn {
		return c.alwaysOn
	}
	return c.rental
}

// LoadCardData fetches what the charger overview shows
func (c *Charger) LoadCardData(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		info, err := c.api.GetChargerInfo(ctx, c.id)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.location = info
		c.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		cs, err := c.api.GetChargeState(ctx, c.id)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.chargeState = cs
		c.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		valid, err := c.api.GetValidity(ctx, c.id)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.valid = &valid
		c.mu.Unlock()
		return nil
	})
	return g.Wait()
}

// LoadAll fetches every part of the charger. All requests run to completion,
// the first failure is returned.
func (c *Charger) LoadAll(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return c.LoadCardData(ctx) })
	g.Go(func() error { return c.LoadListPrice(ctx) })
	g.Go(func() error { return c.alwaysOn.Load(ctx) })
	g.Go(func() error { return c.rental.Load(ctx) })
	g.Go(func() error { return c.LoadNotifications(ctx) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load charger %s: %w", c.id, err)
	}
	return nil
}

// Location returns the charger location, nil before it is loaded
func (c *Charger) Location() *lk.LocationInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.location == nil {
		return nil
	}
	l := *c.location
	return &l
}

func (c *Charger) ChargeState() *lk.ChargeState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.chargeState == nil {
		return nil
	}
	cs := *c.chargeState
	return &cs
}

// Valid reports whether the charger setup is complete. ok is false before it is loaded.
func (c *Charger) Valid() (valid, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.valid == nil {
		return false, false
	}
	return *c.valid, true
}

// Status is the overview label, "Unknown" before the charge state is loaded
func (c *Charger) Status() string {
	cs := c.ChargeState()
	if cs == nil {
		return "Unknown"
	}
	return cs.Status()
}

func (c *Charger) LoadListPrice(ctx context.Context) error {
	lp, err := c.api.GetListPrice(ctx, c.id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.listPrice = lp
	c.mu.Unlock()
	return nil
}

// ListPrice returns the stored list price excluding VAT
func (c *Charger) ListPrice() (pricing.PriceInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.listPrice == nil {
		return pricing.PriceInfo{}, false
	}
	return *c.listPrice, true
}

// ListPriceView returns the list price as shown to the owner, with or without VAT
func (c *Charger) ListPriceView(includeVAT bool) (pricing.PriceInfo, bool) {
	lp, ok := c.ListPrice()
	if !ok || !includeVAT {
		return lp, ok
	}
	return pricing.ConvertListPrice(lp, true), true
}

// SetListPrice stores a new list price. When the input includes VAT it is removed first.
// The local copy is only replaced after the backend accepted it.
func (c *Charger) SetListPrice(ctx context.Context, lp pricing.PriceInfo, includesVAT bool) error {
	if includesVAT {
		lp = pricing.ConvertListPrice(lp, false)
	}
	if err := c.api.PutListPrice(ctx, c.id, lp); err != nil {
		return err
	}
	c.mu.Lock()
	c.listPrice = &lp
	c.mu.Unlock()
	return nil
}
