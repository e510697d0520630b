// Package aggregate rolls per-group forecast totals up into the result
// table: reference totals merged in, hierarchical parent sums, and the
// synthetic Total row. Values here are always numeric; formatting happens
// only in the render package.
package aggregate

import (
	"shipcast/internal/growth"
	"shipcast/internal/series"
)

// TotalLabel names the synthetic row summing all top-level groups.
const TotalLabel = "Total"

// GroupTotal is one group's forecast-period total coming out of the
// adjustment pipeline.
type GroupTotal struct {
	Key   series.GroupKey
	Total float64
}

// Result is the numeric baseline variant of one output row. The growth
// percentage is always derived from the two totals, never stored apart
// from them.
type Result struct {
	Key            series.GroupKey
	ReferenceTotal float64
	ForecastTotal  float64
	GrowthPercent  float64
	GrowthDefined  bool
}

func newResult(key series.GroupKey, ref, total float64) Result {
	pct, defined := growth.Percent(ref, total)
	return Result{
		Key:            key,
		ReferenceTotal: ref,
		ForecastTotal:  total,
		GrowthPercent:  pct,
		GrowthDefined:  defined,
	}
}

// Build merges forecast totals with reference-period totals into rows
// sorted alphabetically by key, and appends the Total row. A group with no
// reference rows gets a zero reference total, never an error.
func Build(totals []GroupTotal, refTotals map[string]float64) []Result {
	keys := make([]series.GroupKey, 0, len(totals))
	byKey := make(map[string]float64, len(totals))
	for _, gt := range totals {
		keys = append(keys, gt.Key)
		byKey[gt.Key.String()] = gt.Total
	}
	series.SortKeys(keys)

	results := make([]Result, 0, len(keys)+1)
	var sumRef, sumForecast float64
	for _, key := range keys {
		ref := refTotals[key.String()]
		total := byKey[key.String()]
		sumRef += ref
		sumForecast += total
		results = append(results, newResult(key, ref, total))
	}

	// growth on the Total row comes from the summed totals, not from
	// averaging child growth percentages
	results = append(results, newResult(series.NewGroupKey(TotalLabel), sumRef, sumForecast))
	return results
}

// Rollup sums leaf results at the given key-prefix level with growth
// recomputed fresh per parent. Level 1 of area/sub-area/destination keys
// yields one row per area.
func Rollup(results []Result, level int) []Result {
	keys := make([]series.GroupKey, 0)
	refSums := make(map[string]float64)
	forecastSums := make(map[string]float64)

	for _, res := range results {
		if res.Key.String() == TotalLabel {
			continue
		}
		parent := res.Key.Prefix(level)
		if _, exists := refSums[parent.String()]; !exists {
			keys = append(keys, parent)
		}
		refSums[parent.String()] += res.ReferenceTotal
		forecastSums[parent.String()] += res.ForecastTotal
	}
	series.SortKeys(keys)

	rolled := make([]Result, 0, len(keys))
	for _, key := range keys {
		rolled = append(rolled, newResult(key, refSums[key.String()], forecastSums[key.String()]))
	}
	return rolled
}
