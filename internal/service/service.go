// Package service orchestrates the analysis pipeline: grouping, per-group
// forecasting, holiday reallocation, growth policy, aggregation and
// rendering, plus the interactive override and comparison operations that
// address a stored run.
package service

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"shipcast/internal/aggregate"
	"shipcast/internal/grouper"
	"shipcast/internal/growth"
	"shipcast/internal/holiday"
	"shipcast/internal/ingest"
	"shipcast/internal/reallocate"
	"shipcast/internal/render"
	"shipcast/internal/runstore"
	"shipcast/internal/series"
)

// TargetMonth is the forecast period; the reference period is the month
// before it in the same year.
const TargetMonth = time.December

// Forecaster is the external forecasting collaborator boundary.
type Forecaster interface {
	Forecast(ts *series.TimeSeries, windows []holiday.Window) (*series.TimeSeries, error)
}

// Options carries the pipeline policy knobs.
type Options struct {
	GrowthFloor    float64
	NegativePolicy growth.NegativePolicy
}

// Analyzer runs analyses and serves the interactive operations on their
// stored results.
type Analyzer struct {
	forecaster Forecaster
	store      *runstore.Store
	sanitizer  *growth.Sanitizer
	floor      float64
	logger     *slog.Logger
}

func NewAnalyzer(f Forecaster, store *runstore.Store, opt Options, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		forecaster: f,
		store:      store,
		sanitizer:  growth.NewSanitizer(opt.NegativePolicy, nil),
		floor:      opt.GrowthFloor,
		logger:     logger.With("component", "service.analyzer"),
	}
}

// AnalyzeParams identifies one analysis request.
type AnalyzeParams struct {
	Year       int
	DaysBefore int
	DaysAfter  int
	Measure    ingest.Measure
	KeyColumns []string
}

// Output is what one operation hands the presentation boundary: the run
// handle, formatted tables, the combined forecast total and a chart page.
type Output struct {
	RunID         string        `json:"run_id"`
	Table         render.Table  `json:"table"`
	AreaTable     *render.Table `json:"area_table,omitempty"`
	TotalForecast string        `json:"total_forecast"`
	ChartHTML     string        `json:"chart_html"`
}

func (p AnalyzeParams) periods() (refFrom, refTo, fcFrom, fcTo time.Time) {
	fcFrom = time.Date(p.Year, TargetMonth, 1, 0, 0, 0, 0, time.UTC)
	fcTo = fcFrom.AddDate(0, 1, -1)
	refFrom = fcFrom.AddDate(0, -1, 0)
	refTo = fcFrom.AddDate(0, 0, -1)
	return refFrom, refTo, fcFrom, fcTo
}

// Analyze runs the full pipeline over decoded rows and stores the result
// as a new run. Groups are forecast independently and in sorted key order;
// one group without history yields a zero forecast instead of failing the
// run.
func (a *Analyzer) Analyze(params AnalyzeParams, rows []ingest.Row) (*Output, error) {
	refFrom, refTo, fcFrom, fcTo := params.periods()
	cutoff := fcFrom.AddDate(0, 0, -1)

	groups, err := grouper.Partition(rows, cutoff)
	if err != nil {
		return nil, err
	}
	windows := holiday.Calendar(params.Year, params.DaysBefore, params.DaysAfter, holiday.DefaultHolidays)
	for _, w := range windows {
		if err := w.Valid(); err != nil {
			return nil, err
		}
	}

	totals := make([]aggregate.GroupTotal, 0, len(groups))
	daily := make([]runstore.GroupDaily, 0, len(groups))
	refTotals := grouper.ReferenceTotals(rows, refFrom, refTo)

	for _, g := range groups {
		fc, err := a.forecaster.Forecast(g.Series, windows)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g.Key, err)
		}

		reallocate.Apply(fc, windows)

		// the group total sums the raw reallocated series; negative
		// substitution applies to totals and dailies independently
		total := fc.Total(fcFrom, fcTo)
		period := fc.Slice(fcFrom, fcTo)
		a.sanitizer.Apply(period.Y)

		points := make([]runstore.DailyPoint, 0, len(period.T))
		for i, currT := range period.T {
			v := math.Round(period.Y[i])
			points = append(points, runstore.DailyPoint{Date: currT, Forecast: v, Initial: v})
		}
		daily = append(daily, runstore.GroupDaily{Key: g.Key, Points: points})

		total = a.sanitizer.Value(total)
		total = growth.ClampFloor(refTotals[g.Key.String()], total, a.floor)
		total = a.sanitizer.Value(total)
		totals = append(totals, aggregate.GroupTotal{Key: g.Key, Total: total})

		a.logger.Info("group forecast complete", "group", g.Key.String(), "total", total)
	}

	results := aggregate.Build(totals, refTotals)

	run := &runstore.Run{
		Measure:    params.Measure,
		Year:       params.Year,
		KeyColumns: params.KeyColumns,
		Baseline:   results,
		Current:    append([]aggregate.Result(nil), results...),
		Daily:      daily,
	}
	runID := a.store.Put(run)
	a.logger.Info("analysis stored", "run_id", runID, "groups", len(groups))

	return a.buildOutput(run)
}

// Run returns a stored analysis run by its ID.
func (a *Analyzer) Run(id string) (*runstore.Run, error) {
	return a.store.Get(id)
}

// OverrideGrowth rescales a stored run's forecast from its immutable
// baseline by a user-supplied growth percentage. Repeated calls with the
// same input produce identical results.
func (a *Analyzer) OverrideGrowth(runID string, input float64) (*Output, error) {
	var out *Output
	err := a.store.Update(runID, func(run *runstore.Run) error {
		totals := make([]aggregate.GroupTotal, 0, len(run.Baseline))
		refTotals := make(map[string]float64, len(run.Baseline))
		for _, res := range run.Baseline {
			if res.Key.String() == aggregate.TotalLabel {
				continue
			}
			refTotals[res.Key.String()] = res.ReferenceTotal
			totals = append(totals, aggregate.GroupTotal{
				Key:   res.Key,
				Total: math.Round(growth.Override(res.ForecastTotal, input)),
			})
		}
		run.Current = aggregate.Build(totals, refTotals)

		for gi := range run.Daily {
			for pi := range run.Daily[gi].Points {
				p := &run.Daily[gi].Points[pi]
				p.Forecast = math.Round(growth.Override(p.Initial, input))
			}
		}

		var err error
		out, err = a.buildOutput(run)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info("growth override applied", "run_id", runID, "growth_input", input)
	return out, nil
}

// Compare merges uploaded actual volumes into a stored run and renders the
// forecast-vs-actual view. Actual rows for groups the run never forecast
// are ignored.
func (a *Analyzer) Compare(runID string, actualRows []ingest.Row) (*Output, error) {
	var out *Output
	err := a.store.Update(runID, func(run *runstore.Run) error {
		known := make(map[string]struct{}, len(run.Daily))
		for _, gd := range run.Daily {
			known[gd.Key.String()] = struct{}{}
		}

		actuals := make(map[string]map[time.Time]float64)
		for _, row := range actualRows {
			key := row.Key.String()
			if _, exists := known[key]; !exists {
				continue
			}
			if actuals[key] == nil {
				actuals[key] = make(map[time.Time]float64)
			}
			actuals[key][row.Date] += row.Value
		}
		run.Actuals = actuals

		var err error
		out, err = a.buildOutput(run)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info("comparison merged", "run_id", runID, "groups_with_actuals", len(actualRows))
	return out, nil
}

func (a *Analyzer) buildOutput(run *runstore.Run) (*Output, error) {
	refHeader := time.Date(run.Year, TargetMonth, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0).Month().String()
	fcHeader := TargetMonth.String()

	table := render.ResultTable(run.Current, run.KeyColumns, refHeader, fcHeader)

	var areaTable *render.Table
	var areas []aggregate.Result
	if len(run.KeyColumns) > 1 {
		areas = aggregate.Rollup(run.Current, 1)
		t := render.ResultTable(areas, run.KeyColumns[:1], refHeader, fcHeader)
		areaTable = &t
	}

	html, err := buildChartHTML(run, areas, refHeader, fcHeader)
	if err != nil {
		return nil, fmt.Errorf("unable to render charts, %w", err)
	}

	var totalForecast float64
	for _, res := range run.Current {
		if res.Key.String() == aggregate.TotalLabel {
			totalForecast = res.ForecastTotal
		}
	}

	return &Output{
		RunID:         run.ID,
		Table:         table,
		AreaTable:     areaTable,
		TotalForecast: render.FormatCount(totalForecast),
		ChartHTML:     html,
	}, nil
}
