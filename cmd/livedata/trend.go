package livedata

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Number of data points kept for the sparkline
const maxHistorySize = 30

// Sparkline characters, lowest first
var sparklineChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

type historyPoint struct {
	power float64
	time  time.Time
}

// History is a bounded series of power readings
type History struct {
	size   int
	points []historyPoint
}

func NewHistory(size int) *History {
	return &History{size: size}
}

func (h *History) Record(power float64, at time.Time) {
	h.points = append(h.points, historyPoint{power: power, time: at})
	if len(h.points) > h.size {
		h.points = h.points[len(h.points)-h.size:]
	}
}

func (h *History) Len() int {
	return len(h.points)
}

func (h *History) Values() []float64 {
	values := make([]float64, len(h.points))
	for i, p := range h.points {
		values[i] = p.power
	}
	return values
}

// Span is the time between the oldest and the newest reading
func (h *History) Span() time.Duration {
	if len(h.points) < 2 {
		return 0
	}
	return h.points[len(h.points)-1].time.Sub(h.points[0].time)
}

func generateSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	minVal, maxVal := values[0], values[0]
	for _, v := range values {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}

	// a flat series renders at the lowest level
	valueRange := maxVal - minVal
	if valueRange == 0 {
		valueRange = 1
	}

	var sb strings.Builder
	for _, v := range values {
		normalized := (v - minVal) / valueRange
		index := int(normalized * float64(len(sparklineChars)-1))
		index = max(0, min(index, len(sparklineChars)-1))
		sb.WriteRune(sparklineChars[index])
	}
	return sb.String()
}

func calculateStats(values []float64) (minVal, maxVal, avg float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}

	minVal = math.MaxFloat64
	maxVal = -math.MaxFloat64
	sum := 0.0
	for _, v := range values {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
		sum += v
	}
	return minVal, maxVal, sum / float64(len(values))
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
