package schedule

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/denysvitali/ladeklubben-cli/state"
)

var ErrNotFound = errors.New("schedule window not found")

// API is the remote side of a charger schedule.
// Windows have no server assigned id, updates carry the original window for matching.
type API interface {
	GetSchedule(ctx context.Context, stationID string, kind Kind) ([]Window, error)
	AddSchedule(ctx context.Context, stationID string, kind Kind, w Window) error
	UpdateSchedule(ctx context.Context, stationID string, kind Kind, updated, original Window) error
	DeleteSchedule(ctx context.Context, stationID string, kind Kind, w Window) error
}

// Store keeps the display windows of one schedule of one charger.
// Every mutation is applied locally first and rolled back if the backend rejects it.
type Store struct {
	api       API
	stationID string
	kind      Kind
	displays  *state.Value[[]Display]
}

func NewStore(api API, stationID string, kind Kind) *Store {
	return &Store{
		api:       api,
		stationID: stationID,
		kind:      kind,
		displays:  state.NewValue[[]Display](nil, cloneDisplays),
	}
}

func cloneDisplays(ds []Display) []Display {
	if ds == nil {
		return nil
	}
	out := make([]Display, len(ds))
	for i, d := range ds {
		d.Days = slices.Clone(d.Days)
		out[i] = d
	}
	return out
}

func (s *Store) Kind() Kind {
	return s.kind
}

func (s *Store) StationID() string {
	return s.stationID
}

// Load replaces the local windows with the ones stored on the server
func (s *Store) Load(ctx context.Context) error {
	windows, err := s.api.GetSchedule(ctx, s.stationID, s.kind)
	if err != nil {
		return fmt.Errorf("failed to get %s schedule: %w", s.kind, err)
	}
	s.displays.Set(ToDisplayList(windows))
	log.Debugf("loaded %d %s windows for %s", len(windows), s.kind, s.stationID)
	return nil
}

func (s *Store) Displays() []Display {
	return s.displays.Get()
}

func (s *Store) Windows() []Window {
	return ToServerList(s.displays.Get())
}

func (s *Store) Subscribe(fn func([]Display)) (unsubscribe func()) {
	return s.displays.Subscribe(fn)
}

// Get returns the display window with the given id
func (s *Store) Get(id string) (Display, error) {
	displays := s.displays.Get()
	i := indexOf(displays, id)
	if i < 0 {
		return Display{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return displays[i], nil
}

// SetExpanded toggles the local expansion flag of a window
func (s *Store) SetExpanded(id string, expanded bool) {
	s.displays.Update(func(ds []Display) []Display {
		if i := indexOf(ds, id); i >= 0 {
			ds[i].Expanded = expanded
		}
		return ds
	})
}

// Add validates the candidate against the current windows and stores it.
// Validation failures are returned before any network call is made.
func (s *Store) Add(ctx context.Context, candidate Display) (Display, error) {
	staged := candidate
	staged.ID = uuid.NewString()
	staged.Days = slices.Clone(candidate.Days)
	staged.SavedToServer = false

	w := ToServer(staged)
	if err := validate(staged, w, s.displays.Get()); err != nil {
		return Display{}, err
	}

	err := state.Optimistic(ctx, s.displays,
		func(ds []Display) []Display {
			return append(ds, staged)
		},
		func(ctx context.Context) error {
			return s.api.AddSchedule(ctx, s.stationID, s.kind, w)
		},
	)
	if err != nil {
		log.Warnf("adding %s window for %s failed, rolled back: %v", s.kind, s.stationID, err)
		return Display{}, fmt.Errorf("failed to add %s schedule: %w", s.kind, err)
	}

	return s.markSaved(staged.ID, w), nil
}

// Update replaces the window with the given id
func (s *Store) Update(ctx context.Context, id string, candidate Display) (Display, error) {
	original, err := s.Get(id)
	if err != nil {
		return Display{}, err
	}

	staged := candidate
	staged.ID = id
	staged.Days = slices.Clone(candidate.Days)
	staged.Expanded = original.Expanded
	staged.SavedToServer = false

	w := ToServer(staged)
	if err := validate(staged, w, s.displays.Get()); err != nil {
		return Display{}, err
	}
	org := ToServer(original)

	err = state.Optimistic(ctx, s.displays,
		func(ds []Display) []Display {
			if i := indexOf(ds, id); i >= 0 {
				ds[i] = staged
			}
			return ds
		},
		func(ctx context.Context) error {
			return s.api.UpdateSchedule(ctx, s.stationID, s.kind, w, org)
		},
	)
	if err != nil {
		log.Warnf("updating %s window for %s failed, rolled back: %v", s.kind, s.stationID, err)
		return Display{}, fmt.Errorf("failed to update %s schedule: %w", s.kind, err)
	}

	return s.markSaved(id, w), nil
}

// Delete removes the window with the given id
func (s *Store) Delete(ctx context.Context, id string) error {
	original, err := s.Get(id)
	if err != nil {
		return err
	}

	err = state.Optimistic(ctx, s.displays,
		func(ds []Display) []Display {
			return slices.DeleteFunc(ds, func(d Display) bool { return d.ID == id })
		},
		func(ctx context.Context) error {
			return s.api.DeleteSchedule(ctx, s.stationID, s.kind, ToServer(original))
		},
	)
	if err != nil {
		log.Warnf("deleting %s window for %s failed, rolled back: %v", s.kind, s.stationID, err)
		return fmt.Errorf("failed to delete %s schedule: %w", s.kind, err)
	}
	return nil
}

// markSaved gives a confirmed window the content id it gets when loaded from the server
func (s *Store) markSaved(stagedID string, w Window) Display {
	saved := ToDisplay(w)
	s.displays.Update(func(ds []Display) []Display {
		if i := indexOf(ds, stagedID); i >= 0 {
			saved.Expanded = ds[i].Expanded
			ds[i] = saved
		}
		return ds
	})
	return saved
}

func validate(d Display, w Window, existing []Display) error {
	if p := Check(d, existing); p != ProblemNone {
		return p.Err()
	}
	if p := CheckWindow(w); p != ProblemNone {
		return p.Err()
	}
	return nil
}

func indexOf(ds []Display, id string) int {
	return slices.IndexFunc(ds, func(d Display) bool { return d.ID == id })
}
