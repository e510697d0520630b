package predict

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipcast/internal/holiday"
	"shipcast/internal/series"
)

func TestForecastEmptySeries(t *testing.T) {
	p := New(0)
	assert.Equal(t, DefaultHorizonDays, p.HorizonDays)

	fc, err := p.Forecast(nil, nil)
	require.NoError(t, err)
	assert.True(t, fc.Empty())

	fc, err = p.Forecast(&series.TimeSeries{}, nil)
	require.NoError(t, err)
	assert.True(t, fc.Empty())
}

func TestForecastCoversHistoryAndHorizon(t *testing.T) {
	start := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	n := 120
	days := make([]time.Time, 0, n)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		d := start.AddDate(0, 0, i)
		days = append(days, d)
		// weekly pattern plus slow growth
		y = append(y, 500+30*float64(i)/float64(n)+80*math.Sin(2*math.Pi*float64(i)/7))
	}
	ts, err := series.New(days, y)
	require.NoError(t, err)

	windows := holiday.Calendar(2024, 2, 1, holiday.DefaultHolidays)

	p := New(31)
	fc, err := p.Forecast(ts, windows)
	require.NoError(t, err)

	require.Len(t, fc.T, n+31)
	assert.Equal(t, days[0], fc.T[0])
	assert.Equal(t, days[n-1].AddDate(0, 0, 31), fc.T[len(fc.T)-1])
}
