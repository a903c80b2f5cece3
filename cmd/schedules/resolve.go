package schedules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/denysvitali/ladeklubben-cli/schedule"
)

// ResolveWindow maps a 1-based list position or a unique id prefix to a window id
func ResolveWindow(displays []schedule.Display, ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(displays) {
			return "", fmt.Errorf("window %d out of range (1-%d)", n, len(displays))
		}
		return displays[n-1].ID, nil
	}

	var matches []string
	for _, d := range displays {
		if strings.HasPrefix(d.ID, ref) {
			matches = append(matches, d.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", schedule.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("window reference %q is ambiguous", ref)
	}
}
