package session

import "github.com/denysvitali/ladeklubben-cli/state"

// Selection points at the controller whose session is currently shown
type Selection struct {
	current *state.Value[*Controller]
}

func NewSelection() *Selection {
	return &Selection{current: state.NewValue[*Controller](nil, nil)}
}

func (s *Selection) Set(c *Controller) {
	s.current.Set(c)
}

func (s *Selection) Clear() {
	s.current.Set(nil)
}

// Get returns the selected controller or nil
func (s *Selection) Get() *Controller {
	return s.current.Get()
}

func (s *Selection) Subscribe(fn func(*Controller)) (unsubscribe func()) {
	return s.current.Subscribe(fn)
}
