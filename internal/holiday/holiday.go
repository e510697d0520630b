// Package holiday builds the holiday window list one analysis run shares
// across all groups. Dates come from rickar/cal holiday definitions so the
// calendar math (observed dates, month/day rules) stays out of this code.
package holiday

import (
	"errors"
	"fmt"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"

	"shipcast/internal/series"
)

var (
	ErrNoName         = errors.New("no holiday name")
	ErrUnsetDate      = errors.New("unset holiday date")
	ErrNegativeWindow = errors.New("negative window size")
)

// Window is a named holiday date plus the day counts before and after it
// that the forecaster treats as part of the holiday's influence interval.
type Window struct {
	Name       string
	Date       time.Time
	DaysBefore int
	DaysAfter  int
}

func (w *Window) Valid() error {
	if w.Name == "" {
		return ErrNoName
	}
	if w.Date.IsZero() {
		return ErrUnsetDate
	}
	if w.DaysBefore < 0 || w.DaysAfter < 0 {
		return fmt.Errorf("%s, %w", w.Name, ErrNegativeWindow)
	}
	return nil
}

// Start returns the first day of the window's influence interval.
func (w *Window) Start() time.Time {
	return w.Date.AddDate(0, 0, -w.DaysBefore)
}

// End returns the last day of the window's influence interval.
func (w *Window) End() time.Time {
	return w.Date.AddDate(0, 0, w.DaysAfter)
}

// Harbolnas is the 12.12 national online shopping day, the demand peak the
// reallocation step concentrates volume on alongside Christmas.
var Harbolnas = &cal.Holiday{
	Name:  "Harbolnas",
	Type:  cal.ObservancePublic,
	Month: time.December,
	Day:   12,
	Func:  cal.CalcDayOfMonth,
}

// DefaultHolidays are the high-demand dates every analysis run models.
var DefaultHolidays = []*cal.Holiday{Harbolnas, us.ChristmasDay}

// Calendar computes one window per holiday for the given year. Holidays
// whose computed date lands in a different year are skipped.
func Calendar(year, daysBefore, daysAfter int, holidays []*cal.Holiday) []Window {
	windows := make([]Window, 0, len(holidays))
	for _, hol := range holidays {
		actual, _ := hol.Calc(year)
		if actual.IsZero() || actual.Year() != year {
			continue
		}
		windows = append(windows, Window{
			Name:       hol.Name,
			Date:       series.Day(actual),
			DaysBefore: daysBefore,
			DaysAfter:  daysAfter,
		})
	}
	return windows
}

// WeekKey maps a date to its ISO calendar week, unique across year
// boundaries.
func WeekKey(t time.Time) int {
	year, week := t.ISOWeek()
	return year*100 + week
}
