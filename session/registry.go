package session

import (
	"context"
	"sort"
	"sync"

	"github.com/denysvitali/ladeklubben-cli/lk"
)

// Registry keeps one controller per station so that refreshed station data
// never discards a running reservation or charge session.
type Registry struct {
	ctx  context.Context
	api  API
	opts Options

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewRegistry(ctx context.Context, api API, opts Options) *Registry {
	return &Registry{
		ctx:         ctx,
		api:         api,
		opts:        opts.withDefaults(),
		controllers: map[string]*Controller{},
	}
}

// Selection is shared by every controller of the registry
func (r *Registry) Selection() *Selection {
	return r.opts.Selection
}

// Get returns the controller of the station, updated with the given data,
// or registers a new one.
func (r *Registry) Get(charger lk.PublicCharger) *Controller {
	r.mu.Lock()
	c, ok := r.controllers[charger.StationID]
	if !ok {
		c = NewController(r.ctx, r.api, charger, r.opts)
		r.controllers[charger.StationID] = c
		r.mu.Unlock()
		return c
	}
	r.mu.Unlock()

	c.UpdateCharger(charger)
	return c
}

func (r *Registry) Lookup(stationID string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[stationID]
	return c, ok
}

// Remove forgets the station and cancels its timers
func (r *Registry) Remove(stationID string) {
	r.mu.Lock()
	c, ok := r.controllers[stationID]
	delete(r.controllers, stationID)
	r.mu.Unlock()

	if ok {
		c.Close()
	}
}

// All returns the registered controllers ordered by station id
func (r *Registry) All() []*Controller {
	r.mu.Lock()
	out := make([]*Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		out = append(out, c)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StationID() < out[j].StationID()
	})
	return out
}

// Close cancels the timers of every controller
func (r *Registry) Close() {
	for _, c := range r.All() {
		c.Close()
	}
}
