package reallocate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipcast/internal/holiday"
	"shipcast/internal/series"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func window(name string, d time.Time) holiday.Window {
	return holiday.Window{Name: name, Date: d, DaysBefore: 2, DaysAfter: 1}
}

// newWeekSeries covers Mon Dec 9 through Sun Dec 15 2024, a single ISO week
// containing the Dec 12 holiday on index 3.
func newWeekSeries(t *testing.T, y []float64) *series.TimeSeries {
	t.Helper()
	days := make([]time.Time, len(y))
	for i := range y {
		days[i] = date(2024, 12, 9+i)
	}
	ts, err := series.New(days, y)
	require.NoError(t, err)
	return ts
}

func TestApplyPromotionAndDemotion(t *testing.T) {
	// max 120 on Tue (idx 1), holiday on Thu (idx 3)
	fc := newWeekSeries(t, []float64{100, 120, 90, 95, 80, 70, 60})
	Apply(fc, []holiday.Window{window("Harbolnas", date(2024, 12, 12))})

	// holiday promoted to old max
	assert.Equal(t, 120.0, fc.Y[3])
	// former max demoted to second highest
	assert.Equal(t, 100.0, fc.Y[1])
	// day after holiday capped at min(120*0.98, 80)
	assert.Equal(t, 80.0, fc.Y[4])
	// untouched days
	assert.Equal(t, 100.0, fc.Y[0])
	assert.Equal(t, 90.0, fc.Y[2])
}

func TestApplyHolidayAlreadyMax(t *testing.T) {
	// worked example: idx 1 is both max and holiday -> promotion is a no-op
	fc := newWeekSeries(t, []float64{100, 120, 90, 95, 80, 70, 60})
	Apply(fc, []holiday.Window{window("Harbolnas", date(2024, 12, 10))})

	assert.Equal(t, []float64{100, 120, 90, 95, 80, 70, 60}, fc.Y)
}

func TestApplyDecayCeiling(t *testing.T) {
	// day after holiday above the decay ceiling gets capped
	fc := newWeekSeries(t, []float64{100, 120, 90, 95, 119, 70, 60})
	Apply(fc, []holiday.Window{window("Harbolnas", date(2024, 12, 12))})

	assert.InDelta(t, 120*DecayFactor, fc.Y[4], 1e-9)
	assert.LessOrEqual(t, fc.Y[4], 120*DecayFactor)
}

func TestApplyTiedMaxima(t *testing.T) {
	// two dates tie for the max; both demote, holiday takes the max
	fc := newWeekSeries(t, []float64{120, 120, 90, 95, 80, 70, 60})
	Apply(fc, []holiday.Window{window("Harbolnas", date(2024, 12, 12))})

	assert.Equal(t, 120.0, fc.Y[3])
	assert.Equal(t, 95.0, fc.Y[0])
	assert.Equal(t, 95.0, fc.Y[1])
}

func TestApplyAllValuesEqual(t *testing.T) {
	// no second highest: demotion skipped, promotion and decay still run
	fc := newWeekSeries(t, []float64{50, 50, 50, 50, 50, 50, 50})
	Apply(fc, []holiday.Window{window("Harbolnas", date(2024, 12, 12))})

	assert.Equal(t, 50.0, fc.Y[3])
	assert.InDelta(t, 50*DecayFactor, fc.Y[4], 1e-9)
	assert.Equal(t, 50.0, fc.Y[0])
}

func TestApplyHolidayOutsideRange(t *testing.T) {
	fc := newWeekSeries(t, []float64{100, 120, 90, 95, 80, 70, 60})
	Apply(fc, []holiday.Window{window("Natal", date(2024, 12, 25))})

	assert.Equal(t, []float64{100, 120, 90, 95, 80, 70, 60}, fc.Y)
}

func TestApplyOnlyTouchesHolidayWeek(t *testing.T) {
	// two ISO weeks, holiday in the second; the first must be untouched
	days := make([]time.Time, 14)
	y := make([]float64, 14)
	for i := range days {
		days[i] = date(2024, 12, 2+i)
		y[i] = float64(10 + i)
	}
	fc, err := series.New(days, y)
	require.NoError(t, err)

	Apply(fc, []holiday.Window{window("Harbolnas", date(2024, 12, 12))})

	for i := 0; i < 7; i++ {
		assert.Equal(t, float64(10+i), fc.Y[i], "week one index %d", i)
	}
	// second week max is 23 on Sun Dec 15 (idx 13); holiday Dec 12 is idx 10
	assert.Equal(t, 23.0, fc.Y[10])
	// former max demoted to second highest (22)
	assert.Equal(t, 22.0, fc.Y[13])
	// day after holiday: min(23*0.98, 21) = 21 unchanged
	assert.Equal(t, 21.0, fc.Y[11])
}

func TestApplyTwoHolidaysSameWeekListOrder(t *testing.T) {
	// both holidays promoted to the same snapshot max, applied in list order
	fc := newWeekSeries(t, []float64{100, 120, 90, 95, 80, 70, 60})
	Apply(fc, []holiday.Window{
		window("first", date(2024, 12, 11)),
		window("second", date(2024, 12, 13)),
	})

	// both promoted to the week max
	assert.Equal(t, 120.0, fc.Y[2])
	assert.Equal(t, 120.0, fc.Y[4])
	// original max demoted once
	assert.Equal(t, 100.0, fc.Y[1])
	// day after each holiday keeps its lower original value
	assert.Equal(t, 95.0, fc.Y[3])
	assert.Equal(t, 70.0, fc.Y[5])
}

func TestApplyEmptySeries(t *testing.T) {
	var fc *series.TimeSeries
	assert.NotPanics(t, func() {
		Apply(fc, []holiday.Window{window("Harbolnas", date(2024, 12, 12))})
	})
}
