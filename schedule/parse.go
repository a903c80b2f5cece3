package schedule

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ParseWindow parses a window written as "HH:MM-HH:MM:Mon,Tue,Wed".
// The day list also accepts the shorthands Weekdays, Weekend and Every.
// The returned Display has no id and is not saved to the server.
func ParseWindow(s string) (Display, error) {
	var d Display

	// Split by colon: HH, MM-HH, MM, days
	colonParts := strings.Split(s, ":")
	if len(colonParts) != 4 {
		return d, fmt.Errorf("invalid window format %q, expected HH:MM-HH:MM:Days", s)
	}
	timeRangePart := strings.Join(colonParts[:3], ":")
	daysPart := colonParts[3]

	timeParts := strings.Split(timeRangePart, "-")
	if len(timeParts) != 2 {
		return d, fmt.Errorf("invalid time range format: %s", timeRangePart)
	}

	start, err := normalizeTime(timeParts[0])
	if err != nil {
		return d, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := normalizeTime(timeParts[1])
	if err != nil {
		return d, fmt.Errorf("invalid end time: %w", err)
	}

	days, err := ParseDays(daysPart)
	if err != nil {
		return d, err
	}

	d.Days = days
	d.StartTime = start
	d.EndTime = end
	return d, nil
}

// normalizeTime validates "H:MM" or "HH:MM" and returns it zero padded.
// "24:00" is accepted as the end of the day.
func normalizeTime(s string) (string, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time format: %s", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 24 {
		return "", fmt.Errorf("invalid hour: %s", parts[0])
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 || (hour == 24 && minute != 0) {
		return "", fmt.Errorf("invalid minute: %s", parts[1])
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// ParseDays parses a comma separated list of day names into Monday based indices
func ParseDays(s string) ([]int, error) {
	var days []int
	add := func(ds ...int) {
		for _, d := range ds {
			if !slices.Contains(days, d) {
				days = append(days, d)
			}
		}
	}
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		switch strings.ToLower(name) {
		case "mon", "monday":
			add(0)
		case "tue", "tuesday":
			add(1)
		case "wed", "wednesday":
			add(2)
		case "thu", "thursday":
			add(3)
		case "fri", "friday":
			add(4)
		case "sat", "saturday":
			add(5)
		case "sun", "sunday":
			add(6)
		case "weekdays":
			add(0, 1, 2, 3, 4)
		case "weekend":
			add(5, 6)
		case "every", "everyday", "all":
			add(0, 1, 2, 3, 4, 5, 6)
		default:
			return nil, fmt.Errorf("invalid weekday: %s", name)
		}
	}
	return days, nil
}
