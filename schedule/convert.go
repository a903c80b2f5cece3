package schedule

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger()

const (
	MinutesPerDay = 24 * 60
	// alwaysOpenInterval is the interval from which an opening hours window counts as open all week
	alwaysOpenInterval = 10079
)

// displayNamespace seeds the content derived ids of display windows
var displayNamespace = uuid.MustParse("6f1c0b7e-3b58-4d0e-9a53-1d2c6a3f5e41")

// Kind names one of the two schedules a charger has
type Kind string

const (
	// KindAlwaysOn is the free charging schedule
	KindAlwaysOn Kind = "alwayson"
	// KindOpenHours is the rental (open hours) schedule
	KindOpenHours Kind = "openhours"
)

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "alwayson", "always-on", "free":
		return KindAlwaysOn, nil
	case "openhours", "open-hours", "rental":
		return KindOpenHours, nil
	default:
		return "", fmt.Errorf("unknown schedule kind %q", s)
	}
}

// Window is a recurring weekly interval as stored by the backend.
// Days are 0 = Monday ... 6 = Sunday, Start is the minute of the day.
type Window struct {
	Days     []int `json:"days"`
	Start    int   `json:"start"`
	Interval int   `json:"interval"`
}

// Display is the editable form of a Window
type Display struct {
	ID            string `json:"id"`
	Days          []int  `json:"days"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	Expanded      bool   `json:"expanded"`
	SavedToServer bool   `json:"savedToServer"`
}

func (w Window) Clone() Window {
	w.Days = slices.Clone(w.Days)
	return w
}

func (w Window) End() int {
	return w.Start + w.Interval
}

// Equal compares two windows the way the backend matches them
func (w Window) Equal(o Window) bool {
	return w.Start == o.Start && w.Interval == o.Interval && slices.Equal(w.Days, o.Days)
}

// Contains reports whether t falls on one of the window days within [start, start+interval)
func (w Window) Contains(t time.Time) bool {
	if !slices.Contains(w.Days, WeekdayIndex(t.Weekday())) {
		return false
	}
	minute := t.Hour()*60 + t.Minute()
	return minute >= w.Start && minute < w.End()
}

// WeekdayIndex maps a time.Weekday to the Monday based index used by the backend
func WeekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// TimeToMinutes converts "HH:MM" to minutes since midnight.
// Returns 0 for empty or invalid input.
func TimeToMinutes(text string) int {
	hours, minutes, ok := strings.Cut(strings.TrimSpace(text), ":")
	if !ok {
		return 0
	}
	h, err := strconv.Atoi(hours)
	if err != nil || h < 0 {
		return 0
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 {
		return 0
	}
	return h*60 + m
}

// EndToMinutes converts the end time of a window. A midnight end ("00:00")
// closes the day and counts as 1440, matching what MinutesToTime renders for it.
func EndToMinutes(text string) int {
	if m := TimeToMinutes(text); m != 0 {
		return m
	}
	hours, minutes, ok := strings.Cut(strings.TrimSpace(text), ":")
	if !ok {
		return 0
	}
	h, herr := strconv.Atoi(hours)
	m, merr := strconv.Atoi(minutes)
	if herr != nil || merr != nil || h != 0 || m != 0 {
		return 0
	}
	return MinutesPerDay
}

// MinutesToTime converts minutes since midnight to "HH:MM", wrapping the hour at 24
func MinutesToTime(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", (minutes/60)%24, minutes%60)
}

// ID returns the content derived identifier of a window
func ID(w Window) string {
	data, err := json.Marshal(w)
	if err != nil {
		// a Window always marshals
		panic(err)
	}
	return uuid.NewSHA1(displayNamespace, data).String()
}

func ToDisplay(w Window) Display {
	return Display{
		ID:            ID(w),
		Days:          slices.Clone(w.Days),
		StartTime:     MinutesToTime(w.Start),
		EndTime:       MinutesToTime(w.End()),
		Expanded:      false,
		SavedToServer: true,
	}
}

func ToServer(d Display) Window {
	start := TimeToMinutes(d.StartTime)
	return Window{
		Days:     slices.Clone(d.Days),
		Start:    start,
		Interval: EndToMinutes(d.EndTime) - start,
	}
}

func ToDisplayList(windows []Window) []Display {
	out := make([]Display, 0, len(windows))
	for _, w := range windows {
		out = append(out, ToDisplay(w))
	}
	return out
}

func ToServerList(displays []Display) []Window {
	out := make([]Window, 0, len(displays))
	for _, d := range displays {
		out = append(out, ToServer(d))
	}
	return out
}

// OpeningHours renders the first window of an open hours schedule
func OpeningHours(windows []Window) string {
	if len(windows) == 0 {
		return "Unknown"
	}
	w := windows[0]
	if w.Interval >= alwaysOpenInterval {
		return "Always Open"
	}
	return MinutesToTime(w.Start) + " - " + MinutesToTime(w.End())
}
