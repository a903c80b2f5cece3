package managed

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentLoads bounds the chargers loaded at the same time
const maxConcurrentLoads = 4

// Chargers is the collection of owned chargers, in the order the backend lists them
type Chargers struct {
	api API

	mu       sync.RWMutex
	chargers map[string]*Charger
	order    []string
	selected string
}

func NewChargers(api API) *Chargers {
	return &Chargers{
		api:      api,
		chargers: map[string]*Charger{},
	}
}

// Init replaces the collection with the chargers the user currently owns and clears the selection
func (cs *Chargers) Init(ctx context.Context) ([]*Charger, error) {
	ids, err := cs.api.GetChargepoints(ctx)
	if err != nil {
		return nil, err
	}

	chargers := make(map[string]*Charger, len(ids))
	order := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := chargers[id]; ok {
			continue
		}
		chargers[id] = NewCharger(cs.api, id)
		order = append(order, id)
	}

	cs.mu.Lock()
	cs.chargers = chargers
	cs.order = order
	cs.selected = ""
	cs.mu.Unlock()

	log.Debugf("initialized %d chargers", len(order))
	return cs.All(), nil
}

func (cs *Chargers) Get(id string) (*Charger, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	c, ok := cs.chargers[id]
	return c, ok
}

func (cs *Chargers) All() []*Charger {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]*Charger, 0, len(cs.order))
	for _, id := range cs.order {
		out = append(out, cs.chargers[id])
	}
	return out
}

func (cs *Chargers) Select(id string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chargers[id]; !ok {
		return fmt.Errorf("charger %s is not owned by this user", id)
	}
	cs.selected = id
	return nil
}

// Selected returns the selected charger or nil
func (cs *Chargers) Selected() *Charger {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chargers[cs.selected]
}

// LoadAll loads the overview data of every charger. A failing charger is
// logged and does not stop the others.
func (cs *Chargers) LoadAll(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(maxConcurrentLoads)
	for _, c := range cs.All() {
		g.Go(func() error {
			if err := c.LoadCardData(ctx); err != nil {
				log.Warnf("Error loading charger %s: %v", c.ID(), err)
				return fmt.Errorf("charger %s: %w", c.ID(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
