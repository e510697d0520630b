// Package reallocate enforces the domain rule that forecast peaks land on
// known high-demand holiday dates instead of whatever date the statistical
// model predicted as the weekly maximum.
package reallocate

import (
	"math"
	"time"

	"shipcast/internal/holiday"
	"shipcast/internal/series"
)

// DecayFactor caps the day after a holiday at 98% of the holiday week's
// pre-adjustment maximum.
const DecayFactor = 0.98

type weekSnapshot struct {
	highest     float64
	highestIdxs []int
	second      float64
	hasSecond   bool
}

// Apply mutates the forecast series in place, one ISO calendar week at a
// time. Within each week holding a configured holiday date:
//
//  1. the holiday date is promoted to the week's maximum value,
//  2. every other date that held that maximum is demoted to the week's
//     second-highest value, when one exists,
//  3. the day after the holiday is capped at DecayFactor times the maximum,
//     keeping the model's value when it is already lower.
//
// The week's maximum, second-highest and maximum-date set are snapshotted
// before any holiday in the week is applied. Holidays are applied in list
// order; with two holidays in one week the later one may overwrite shared
// dates, matching the configured order deterministically. Holiday dates
// outside the series range are skipped.
func Apply(fc *series.TimeSeries, windows []holiday.Window) {
	if fc.Empty() {
		return
	}

	snapshots := snapshotWeeks(fc)

	for _, w := range windows {
		holidayIdx, err := fc.Index(w.Date)
		if err != nil {
			continue
		}
		snap, exists := snapshots[holiday.WeekKey(w.Date)]
		if !exists {
			continue
		}

		fc.Y[holidayIdx] = snap.highest

		if snap.hasSecond {
			for _, idx := range snap.highestIdxs {
				if idx != holidayIdx {
					fc.Y[idx] = snap.second
				}
			}
		}

		decayDay(fc, w.Date, snap.highest)
	}
}

func snapshotWeeks(fc *series.TimeSeries) map[int]*weekSnapshot {
	snapshots := make(map[int]*weekSnapshot)
	for i, currT := range fc.T {
		key := holiday.WeekKey(currT)
		snap, exists := snapshots[key]
		if !exists {
			snap = &weekSnapshot{highest: math.Inf(-1)}
			snapshots[key] = snap
		}
		switch {
		case fc.Y[i] > snap.highest:
			// the old maximum becomes the running second
			if !math.IsInf(snap.highest, -1) {
				snap.second = snap.highest
				snap.hasSecond = true
			}
			snap.highest = fc.Y[i]
			snap.highestIdxs = snap.highestIdxs[:0]
			snap.highestIdxs = append(snap.highestIdxs, i)
		case fc.Y[i] == snap.highest:
			snap.highestIdxs = append(snap.highestIdxs, i)
		case !snap.hasSecond || fc.Y[i] > snap.second:
			snap.second = fc.Y[i]
			snap.hasSecond = true
		}
	}
	return snapshots
}

func decayDay(fc *series.TimeSeries, holidayDate time.Time, weekMax float64) {
	nextIdx, err := fc.Index(holidayDate.AddDate(0, 0, 1))
	if err != nil {
		return
	}
	fc.Y[nextIdx] = math.Min(weekMax*DecayFactor, fc.Y[nextIdx])
}
