// Package series holds the daily time series and group key types shared by
// the grouping, forecasting and adjustment stages.
package series

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrNoData           = errors.New("no data points")
	ErrLenMismatch      = errors.New("time has a different length than values")
	ErrNonMonotonic     = errors.New("time is not strictly increasing")
	ErrNonDaily         = errors.New("time points are not on calendar-day boundaries")
	ErrGapInDailyRange  = errors.New("gap in daily range")
	ErrDateOutOfRange   = errors.New("date outside of series range")
	ErrUnknownDateIndex = errors.New("no index for date")
)

// TimeSeries is a gap-free daily series. T holds one midnight-UTC timestamp
// per calendar date and Y the observed or forecast value for that date.
type TimeSeries struct {
	T []time.Time
	Y []float64
}

// New validates and copies the input slices into a TimeSeries. Time points
// must be strictly increasing consecutive calendar days.
func New(t []time.Time, y []float64) (*TimeSeries, error) {
	if len(y) == 0 {
		return nil, ErrNoData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf("time has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrLenMismatch)
	}

	for i, currT := range t {
		if !currT.Equal(Day(currT)) {
			return nil, fmt.Errorf("non-midnight time at %d, %w", i, ErrNonDaily)
		}
		if i == 0 {
			continue
		}
		if !currT.After(t[i-1]) {
			return nil, fmt.Errorf("non-increasing time at %d, %w", i, ErrNonMonotonic)
		}
		if currT.Sub(t[i-1]) != 24*time.Hour {
			return nil, fmt.Errorf("missing day before %s, %w",
				currT.Format(time.DateOnly), ErrGapInDailyRange)
		}
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	return &TimeSeries{T: tSeries, Y: ySeries}, nil
}

// Empty reports whether the series holds no points. A nil receiver is empty.
func (ts *TimeSeries) Empty() bool {
	return ts == nil || len(ts.T) == 0
}

// Index returns the position of date in the series or an error if the date
// falls outside the covered range.
func (ts *TimeSeries) Index(date time.Time) (int, error) {
	if ts.Empty() {
		return 0, ErrDateOutOfRange
	}
	date = Day(date)
	if date.Before(ts.T[0]) || date.After(ts.T[len(ts.T)-1]) {
		return 0, fmt.Errorf("%s, %w", date.Format(time.DateOnly), ErrDateOutOfRange)
	}
	idx := int(date.Sub(ts.T[0]) / (24 * time.Hour))
	if !ts.T[idx].Equal(date) {
		return 0, fmt.Errorf("%s, %w", date.Format(time.DateOnly), ErrUnknownDateIndex)
	}
	return idx, nil
}

// Slice returns a copy of the sub-series covering [from, to] inclusive,
// clipped to the series range.
func (ts *TimeSeries) Slice(from, to time.Time) *TimeSeries {
	if ts.Empty() {
		return &TimeSeries{}
	}
	from, to = Day(from), Day(to)
	out := &TimeSeries{}
	for i, currT := range ts.T {
		if currT.Before(from) || currT.After(to) {
			continue
		}
		out.T = append(out.T, currT)
		out.Y = append(out.Y, ts.Y[i])
	}
	return out
}

// Total sums the values within [from, to] inclusive.
func (ts *TimeSeries) Total(from, to time.Time) float64 {
	return floats.Sum(ts.Slice(from, to).Y)
}

// Day truncates a timestamp to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GroupKey identifies one partition of the input rows. Parts are ordered
// from the coarsest category to the finest, e.g. area, sub-area, destination.
type GroupKey struct {
	Parts []string
}

func NewGroupKey(parts ...string) GroupKey {
	return GroupKey{Parts: parts}
}

// String joins the key parts for display and for use as a map key.
func (k GroupKey) String() string {
	return strings.Join(k.Parts, " / ")
}

// Prefix returns the key truncated to its first n parts.
func (k GroupKey) Prefix(n int) GroupKey {
	if n > len(k.Parts) {
		n = len(k.Parts)
	}
	return GroupKey{Parts: append([]string(nil), k.Parts[:n]...)}
}

// SortKeys orders keys alphabetically by their joined representation, the
// order every output table uses.
func SortKeys(keys []GroupKey) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}
