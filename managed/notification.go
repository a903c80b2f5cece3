package managed

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/denysvitali/ladeklubben-cli/lk"
	"github.com/denysvitali/ladeklubben-cli/state"
)

// Notification is the per address view of a notification setup
type Notification struct {
	Email   string `json:"email"`
	OnBegin bool   `json:"onBeginEnabled"`
	OnEnd   bool   `json:"onEndEnabled"`
}

// FormatNotificationSetup merges the onBegin and onEnd lists into one entry per address,
// in order of first appearance. An event counts as enabled only when its flag is 1.
func FormatNotificationSetup(setup *lk.NotificationSetup) []Notification {
	if setup == nil {
		return []Notification{}
	}

	var emails []string
	for _, list := range [][]lk.NotificationEntry{setup.OnBegin, setup.OnEnd} {
		for _, entry := range list {
			if !slices.Contains(emails, entry.Email) {
				emails = append(emails, entry.Email)
			}
		}
	}

	out := make([]Notification, 0, len(emails))
	for _, email := range emails {
		out = append(out, Notification{
			Email:   email,
			OnBegin: enabledFor(setup.OnBegin, email),
			OnEnd:   enabledFor(setup.OnEnd, email),
		})
	}
	return out
}

func enabledFor(entries []lk.NotificationEntry, email string) bool {
	i := slices.IndexFunc(entries, func(e lk.NotificationEntry) bool { return e.Email == email })
	return i >= 0 && entries[i].Enabled == 1
}

func newNotifications() *state.Value[[]Notification] {
	return state.NewValue[[]Notification](nil, slices.Clone[[]Notification])
}

func (c *Charger) LoadNotifications(ctx context.Context) error {
	setup, err := c.api.GetNotificationSetup(ctx, c.id)
	if err != nil {
		return err
	}
	c.notifications.Set(FormatNotificationSetup(setup))
	return nil
}

func (c *Charger) Notifications() []Notification {
	return c.notifications.Get()
}

func (c *Charger) SubscribeNotifications(fn func([]Notification)) (unsubscribe func()) {
	return c.notifications.Subscribe(fn)
}

// AddOrUpdateNotification shows the new setting right away and restores
// the previous list if either backend call fails.
func (c *Charger) AddOrUpdateNotification(ctx context.Context, email string, onBegin, onEnd bool) error {
	err := state.Optimistic(ctx, c.notifications,
		func(ns []Notification) []Notification {
			ns = slices.DeleteFunc(ns, func(n Notification) bool { return n.Email == email })
			return append(ns, Notification{Email: email, OnBegin: onBegin, OnEnd: onEnd})
		},
		func(ctx context.Context) error {
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return c.api.PutNotification(ctx, c.id, email, lk.EventOnBegin, onBegin)
			})
			g.Go(func() error {
				return c.api.PutNotification(ctx, c.id, email, lk.EventOnEnd, onEnd)
			})
			return g.Wait()
		},
	)
	if err != nil {
		log.Errorf("Error updating notification setup of %s: %v", c.id, err)
		return fmt.Errorf("failed to update notification for %s: %w", email, err)
	}
	return nil
}

func (c *Charger) DeleteNotification(ctx context.Context, email string) error {
	err := state.Optimistic(ctx, c.notifications,
		func(ns []Notification) []Notification {
			return slices.DeleteFunc(ns, func(n Notification) bool { return n.Email == email })
		},
		func(ctx context.Context) error {
			g, ctx := errgroup.WithContext(ctx)
			for _, event := range []lk.EventType{lk.EventOnBegin, lk.EventOnEnd} {
				g.Go(func() error {
					return c.api.DeleteNotification(ctx, c.id, email, event)
				})
			}
			return g.Wait()
		},
	)
	if err != nil {
		log.Errorf("Error deleting notification setup of %s: %v", c.id, err)
		return fmt.Errorf("failed to delete notification for %s: %w", email, err)
	}
	return nil
}
