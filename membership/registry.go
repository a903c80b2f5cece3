package membership

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/denysvitali/ladeklubben-cli/pricing"
)

var log = logrus.StandardLogger()

// MembershipFetcher returns the guest groups of the logged in user
type MembershipFetcher interface {
	GetGuestGroups(ctx context.Context) (*GuestGroups, error)
}

// Build derives the member price profile of every station appearing in any group.
// Flat and free always win over a percentage discount.
func Build(groups GuestGroups) map[string]pricing.MemberProfile {
	stations := map[string]struct{}{}
	for _, list := range [][]string{groups.Discount.Stations, groups.Flat.Stations, groups.Free.Stations} {
		for _, s := range list {
			stations[s] = struct{}{}
		}
	}

	profiles := make(map[string]pricing.MemberProfile, len(stations))
	for stationID := range stations {
		profile := pricing.MemberProfile{
			StationID: stationID,
			Flat:      slices.Contains(groups.Flat.Stations, stationID),
			Free:      slices.Contains(groups.Free.Stations, stationID),
		}

		if slices.Contains(groups.Discount.Stations, stationID) {
			if pct, ok := groups.Discount.Percent[stationID]; ok {
				profile.DiscountTariff = clampPercent(pct)
				if !profile.Flat && !profile.Free {
					profile.TariffPct = profile.DiscountTariff
				}
			}
		}

		profiles[stationID] = profile
	}
	return profiles
}

func clampPercent(pct float64) int {
	if math.IsNaN(pct) {
		return 0
	}
	return int(math.Max(0, math.Min(pct, 100)))
}

// Registry maps station ids to the member price profile of the current user.
// It is rebuilt wholesale on every login or refresh.
type Registry struct {
	mu        sync.RWMutex
	profiles  map[string]pricing.MemberProfile
	groups    *GuestGroups
	observers map[int]func()
	nextID    int
}

func NewRegistry() *Registry {
	return &Registry{
		profiles:  map[string]pricing.MemberProfile{},
		observers: map[int]func(){},
	}
}

// Init replaces the registry content with the profiles derived from groups
func (r *Registry) Init(groups GuestGroups) {
	profiles := Build(groups)
	r.mu.Lock()
	r.profiles = profiles
	r.groups = &groups
	r.mu.Unlock()

	log.Debugf("member pricing updated for %d stations", len(profiles))
	r.notify()
}

// Clear drops every profile, used on logout
func (r *Registry) Clear() {
	r.mu.Lock()
	r.profiles = map[string]pricing.MemberProfile{}
	r.groups = nil
	r.mu.Unlock()
	r.notify()
}

// Lookup returns the profile of a station, or the zero discount profile
func (r *Registry) Lookup(stationID string) pricing.MemberProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.profiles[stationID]; ok {
		return p
	}
	return pricing.DefaultMemberProfile()
}

// Groups returns the payload the registry was last built from
func (r *Registry) Groups() *GuestGroups {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.groups
}

// Stations returns the sorted ids of all stations with a member profile
func (r *Registry) Stations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

// Refresh fetches the guest groups and rebuilds the registry.
// On failure the previous profiles are kept.
func (r *Registry) Refresh(ctx context.Context, fetcher MembershipFetcher) error {
	groups, err := fetcher.GetGuestGroups(ctx)
	if err != nil {
		log.Errorf("failed to update member pricing: %v", err)
		return fmt.Errorf("failed to update member pricing: %w", err)
	}
	if groups == nil {
		log.Debugf("no guest groups returned, keeping member pricing")
		return nil
	}
	r.Init(*groups)
	return nil
}

// Subscribe registers fn to be called after every Init or Clear
func (r *Registry) Subscribe(fn func()) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.observers[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.observers, id)
		r.mu.Unlock()
	}
}

func (r *Registry) notify() {
	r.mu.RLock()
	observers := make([]func(), 0, len(r.observers))
	for _, fn := range r.observers {
		observers = append(observers, fn)
	}
	r.mu.RUnlock()

	for _, fn := range observers {
		fn()
	}
}
