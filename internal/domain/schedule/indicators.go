package schedule

import (
	"time"

	"github.com/planwise/core/internal/domain/entities"
)

// IndicatorColor is a calendar-day mark summarizing task activity.
type IndicatorColor string

const (
	IndicatorRed   IndicatorColor = "red"   // due that day
	IndicatorBlue  IndicatorColor = "blue"  // starts that day
	IndicatorGreen IndicatorColor = "green" // ongoing between start and due
)

// MaxIndicatorsPerDay caps the rendered marks per day. Distinct colors
// never exceed three; the cap guards pathological inputs.
const MaxIndicatorsPerDay = 8

// DayIndicators pairs one grid day with its ordered color set.
type DayIndicators struct {
	Day    time.Time        `json:"day"`
	Colors []IndicatorColor `json:"colors"`
}

// MonthGrid returns the Monday-start full-week day sequence covering the
// month containing ref, truncated to local midnights.
func MonthGrid(ref time.Time) []time.Time {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	last := first.AddDate(0, 1, -1)

	// Back up to the Monday on or before the 1st.
	lead := (int(first.Weekday()) + 6) % 7
	cur := first.AddDate(0, 0, -lead)

	// Forward to the Sunday on or after the last day.
	trail := (7 - int(last.Weekday())) % 7
	end := last.AddDate(0, 0, trail)

	var days []time.Time
	for !cur.After(end) {
		days = append(days, cur)
		cur = cur.AddDate(0, 0, 1)
	}
	return days
}

// Indicators computes the per-day color sets for a visible grid. Each task
// contributes at most one color per day, first match wins: red on its due
// day, else blue on its start day, else green strictly between the two.
// Colors are emitted in fixed priority order red, blue, green.
func Indicators(days []time.Time, tasks []entities.Task) []DayIndicators {
	out := make([]DayIndicators, len(days))
	for i, day := range days {
		dayStart := entities.DayStart(day)
		var red, blue, green bool
		for _, t := range tasks {
			switch classify(t, dayStart) {
			case IndicatorRed:
				red = true
			case IndicatorBlue:
				blue = true
			case IndicatorGreen:
				green = true
			}
		}
		colors := make([]IndicatorColor, 0, 3)
		if red {
			colors = append(colors, IndicatorRed)
		}
		if blue {
			colors = append(colors, IndicatorBlue)
		}
		if green {
			colors = append(colors, IndicatorGreen)
		}
		if len(colors) > MaxIndicatorsPerDay {
			colors = colors[:MaxIndicatorsPerDay]
		}
		out[i] = DayIndicators{Day: dayStart, Colors: colors}
	}
	return out
}

// classify picks the single indicator a task contributes on a day, or ""
// when it contributes none. The cases are mutually exclusive per task.
func classify(t entities.Task, dayStart time.Time) IndicatorColor {
	if t.DueAt != nil && entities.SameDay(dayStart, *t.DueAt) {
		return IndicatorRed
	}
	if t.StartAt != nil && entities.SameDay(dayStart, *t.StartAt) {
		return IndicatorBlue
	}
	if t.StartAt != nil && t.DueAt != nil {
		startDay := entities.DayStart(*t.StartAt)
		dueDay := entities.DayStart(*t.DueAt)
		if dayStart.After(startDay) && dayStart.Before(dueDay) {
			return IndicatorGreen
		}
	}
	return ""
}
