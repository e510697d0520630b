// Package grouper partitions decoded rows into one daily series per group
// key and computes reference-period totals per group.
package grouper

import (
	"errors"
	"time"

	"shipcast/internal/ingest"
	"shipcast/internal/series"
)

var ErrNoRows = errors.New("no rows to partition")

// Group pairs a key with the daily volume series summed for it.
type Group struct {
	Key    series.GroupKey
	Series *series.TimeSeries
}

// Partition drops rows after the cutoff date, sums volume per calendar date
// within each distinct key, and densifies every group to a gap-free daily
// range. Days without rows inside a group's observed span are zero. Groups
// come back sorted by key.
func Partition(rows []ingest.Row, cutoff time.Time) ([]Group, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	cutoff = series.Day(cutoff)

	type span struct {
		key        series.GroupKey
		byDate     map[time.Time]float64
		start, end time.Time
	}
	spans := make(map[string]*span)

	for _, row := range rows {
		if row.Date.After(cutoff) {
			continue
		}
		sp, exists := spans[row.Key.String()]
		if !exists {
			sp = &span{
				key:    row.Key,
				byDate: make(map[time.Time]float64),
				start:  row.Date,
				end:    row.Date,
			}
			spans[row.Key.String()] = sp
		}
		sp.byDate[row.Date] += row.Value
		if row.Date.Before(sp.start) {
			sp.start = row.Date
		}
		if row.Date.After(sp.end) {
			sp.end = row.Date
		}
	}

	keys := make([]series.GroupKey, 0, len(spans))
	for _, sp := range spans {
		keys = append(keys, sp.key)
	}
	series.SortKeys(keys)

	groups := make([]Group, 0, len(keys))
	for _, key := range keys {
		sp := spans[key.String()]
		n := int(sp.end.Sub(sp.start)/(24*time.Hour)) + 1
		t := make([]time.Time, 0, n)
		y := make([]float64, 0, n)
		for d := sp.start; !d.After(sp.end); d = d.Add(24 * time.Hour) {
			t = append(t, d)
			y = append(y, sp.byDate[d])
		}
		ts, err := series.New(t, y)
		if err != nil {
			return nil, err
		}
		groups = append(groups, Group{Key: key, Series: ts})
	}
	return groups, nil
}

// ReferenceTotals sums volume per key over [from, to] inclusive with no
// per-date granularity. A key absent from the result simply has no rows in
// the window; callers treat that as zero.
func ReferenceTotals(rows []ingest.Row, from, to time.Time) map[string]float64 {
	from, to = series.Day(from), series.Day(to)
	totals := make(map[string]float64)
	for _, row := range rows {
		if row.Date.Before(from) || row.Date.After(to) {
			continue
		}
		totals[row.Key.String()] += row.Value
	}
	return totals
}
