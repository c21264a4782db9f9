package schedule

import (
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/planwise/core/internal/domain/entities"
)

func TestIndicators_SpanClassification(t *testing.T) {
	is := is.New(t)

	day1 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	start := day1.Add(10 * time.Hour)
	due := day1.AddDate(0, 0, 4).Add(18 * time.Hour)
	tasks := []entities.Task{
		{ID: "span", Type: entities.TaskTypeDeadline, StartAt: &start, DueAt: &due},
	}

	var days []time.Time
	for i := 0; i < 6; i++ {
		days = append(days, day1.AddDate(0, 0, i))
	}

	out := Indicators(days, tasks)
	is.Equal(out[0].Colors, []IndicatorColor{IndicatorBlue})
	is.Equal(out[1].Colors, []IndicatorColor{IndicatorGreen})
	is.Equal(out[2].Colors, []IndicatorColor{IndicatorGreen})
	is.Equal(out[3].Colors, []IndicatorColor{IndicatorGreen})
	is.Equal(out[4].Colors, []IndicatorColor{IndicatorRed})
	is.Equal(len(out[5].Colors), 0)
}

func TestIndicators_DuePrecedesStart(t *testing.T) {
	is := is.New(t)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	sameDay := day.Add(9 * time.Hour)
	tasks := []entities.Task{
		{ID: "oneday", StartAt: &sameDay, DueAt: &sameDay},
	}

	out := Indicators([]time.Time{day}, tasks)
	is.Equal(out[0].Colors, []IndicatorColor{IndicatorRed})
}

func TestIndicators_FixedColorOrder(t *testing.T) {
	is := is.New(t)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	starts := day.Add(8 * time.Hour)
	dues := day.Add(17 * time.Hour)
	spanStart := day.AddDate(0, 0, -1)
	spanDue := day.AddDate(0, 0, 2)
	tasks := []entities.Task{
		{ID: "ongoing", StartAt: &spanStart, DueAt: &spanDue},
		{ID: "starting", StartAt: &starts},
		{ID: "due", DueAt: &dues},
	}

	out := Indicators([]time.Time{day}, tasks)
	is.Equal(out[0].Colors, []IndicatorColor{IndicatorRed, IndicatorBlue, IndicatorGreen})
}

func TestIndicators_DuplicateColorsCollapse(t *testing.T) {
	is := is.New(t)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	morning := day.Add(9 * time.Hour)
	evening := day.Add(20 * time.Hour)
	tasks := []entities.Task{
		{ID: "a", DueAt: &morning},
		{ID: "b", DueAt: &evening},
	}

	out := Indicators([]time.Time{day}, tasks)
	is.Equal(out[0].Colors, []IndicatorColor{IndicatorRed})
}

func TestMonthGrid_MondayStartFullWeeks(t *testing.T) {
	is := is.New(t)

	// March 2026: the 1st is a Sunday, the 31st a Tuesday.
	ref := time.Date(2026, 3, 15, 13, 45, 0, 0, time.Local)
	days := MonthGrid(ref)

	is.Equal(len(days)%7, 0)
	is.Equal(days[0].Weekday(), time.Monday)
	is.Equal(days[len(days)-1].Weekday(), time.Sunday)

	// grid leads in on Feb 23 and runs through Apr 5
	is.True(days[0].Equal(time.Date(2026, 2, 23, 0, 0, 0, 0, time.Local)))
	is.True(days[len(days)-1].Equal(time.Date(2026, 4, 5, 0, 0, 0, 0, time.Local)))

	// every day of March is present
	seen := map[int]bool{}
	for _, d := range days {
		if d.Month() == time.March {
			seen[d.Day()] = true
		}
	}
	is.Equal(len(seen), 31)
}
