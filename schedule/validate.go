package schedule

import (
	"errors"
	"slices"
	"strings"
)

// Problem is the outcome of validating a schedule window
type Problem int

const (
	ProblemNone Problem = iota
	ProblemNoDays
	ProblemInvalidRange
	ProblemConflict
	ProblemOutOfRange
	ProblemCrossesMidnight
)

var (
	ErrNoDays          = errors.New("no days selected")
	ErrInvalidRange    = errors.New("end time must be after start time")
	ErrConflict        = errors.New("window overlaps an existing window")
	ErrOutOfRange      = errors.New("start time or day out of range")
	ErrCrossesMidnight = errors.New("windows crossing midnight are not supported")
)

func (p Problem) Err() error {
	switch p {
	case ProblemNone:
		return nil
	case ProblemNoDays:
		return ErrNoDays
	case ProblemInvalidRange:
		return ErrInvalidRange
	case ProblemConflict:
		return ErrConflict
	case ProblemOutOfRange:
		return ErrOutOfRange
	case ProblemCrossesMidnight:
		return ErrCrossesMidnight
	}
	return errors.New("unknown schedule problem")
}

func (p Problem) String() string {
	if err := p.Err(); err != nil {
		return err.Error()
	}
	return "ok"
}

var dayAbbreviations = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// IsValidRange reports whether end is strictly after start. An end of "00:00" is midnight at the end of the day.
func IsValidRange(startTime, endTime string) bool {
	return EndToMinutes(endTime) > TimeToMinutes(startTime)
}

// HasConflict reports whether the candidate overlaps any existing window
// sharing a day. The window with the candidate id itself is skipped.
func HasConflict(candidateID string, days []int, startTime, endTime string, existing []Display) bool {
	start := TimeToMinutes(startTime)
	end := EndToMinutes(endTime)

	for _, other := range existing {
		if other.ID == candidateID {
			continue
		}
		if !daysOverlap(days, other.Days) {
			continue
		}
		otherStart := TimeToMinutes(other.StartTime)
		otherEnd := EndToMinutes(other.EndTime)
		if start < otherEnd && end > otherStart {
			return true
		}
	}
	return false
}

func daysOverlap(a, b []int) bool {
	for _, d := range a {
		if slices.Contains(b, d) {
			return true
		}
	}
	return false
}

// Check validates a display window against the existing ones
func Check(d Display, existing []Display) Problem {
	switch {
	case len(d.Days) == 0:
		return ProblemNoDays
	case !IsValidRange(d.StartTime, d.EndTime):
		return ProblemInvalidRange
	case HasConflict(d.ID, d.Days, d.StartTime, d.EndTime, existing):
		return ProblemConflict
	}
	return ProblemNone
}

func IsValid(d Display, existing []Display) bool {
	return Check(d, existing) == ProblemNone
}

// CheckWindow validates a server window on its own
func CheckWindow(w Window) Problem {
	if len(w.Days) == 0 {
		return ProblemNoDays
	}
	for _, d := range w.Days {
		if d < 0 || d > 6 {
			return ProblemOutOfRange
		}
	}
	if w.Start < 0 || w.Start >= MinutesPerDay {
		return ProblemOutOfRange
	}
	if w.Interval <= 0 {
		return ProblemInvalidRange
	}
	if w.End() > MinutesPerDay {
		return ProblemCrossesMidnight
	}
	return ProblemNone
}

// FormatDays renders a day set, keeping the order the caller passed in
func FormatDays(days []int) string {
	if len(days) == 0 {
		return "No days"
	}
	if len(days) == 7 {
		return "Every day"
	}
	if len(days) == 5 && containsAll(days, 0, 1, 2, 3, 4) {
		return "Weekdays"
	}
	if len(days) == 2 && containsAll(days, 5, 6) {
		return "Weekend"
	}

	names := make([]string, 0, len(days))
	for _, d := range days {
		if d < 0 || d >= len(dayAbbreviations) {
			names = append(names, "?")
			continue
		}
		names = append(names, dayAbbreviations[d])
	}
	return strings.Join(names, ", ")
}

func containsAll(days []int, want ...int) bool {
	for _, w := range want {
		if !slices.Contains(days, w) {
			return false
		}
	}
	return true
}
