package service

import (
	"time"

	"github.com/go-echarts/go-echarts/v2/components"

	"shipcast/internal/aggregate"
	"shipcast/internal/render"
	"shipcast/internal/runstore"
)

// buildChartHTML assembles the chart page for a run: an area summary bar
// chart when the grouping is hierarchical, and either the forecast line
// chart or the forecast-vs-actual comparison when actuals were uploaded.
func buildChartHTML(run *runstore.Run, areas []aggregate.Result, refHeader, fcHeader string) (string, error) {
	axis := periodDays(run.Year)

	charts := make([]components.Charter, 0, 2)
	if len(areas) > 0 {
		charts = append(charts, render.AreaSummaryChart(
			"Forecast Summary by "+refHeader+"/"+fcHeader+" Area", refHeader, fcHeader, areas))
	}

	measureLabel := run.Measure.Name + " (" + run.Measure.Unit + ")"
	if len(run.Actuals) > 0 {
		charts = append(charts, render.ComparisonChart(
			"Forecast vs Actual "+measureLabel, comparisonSeries(run, axis)))
	} else {
		charts = append(charts, render.ForecastChart(
			"Forecasted "+measureLabel+" per group", combinedSeries(run, axis), groupSeries(run, axis)))
	}

	return render.PageHTML(charts...)
}

func periodDays(year int) []time.Time {
	from := time.Date(year, TargetMonth, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	days := make([]time.Time, 0, 31)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func alignForecast(gd runstore.GroupDaily, axis []time.Time) []float64 {
	byDate := make(map[time.Time]float64, len(gd.Points))
	for _, p := range gd.Points {
		byDate[p.Date] = p.Forecast
	}
	y := make([]float64, len(axis))
	for i, d := range axis {
		y[i] = byDate[d]
	}
	return y
}

func combinedSeries(run *runstore.Run, axis []time.Time) render.Series {
	y := make([]float64, len(axis))
	for _, gd := range run.Daily {
		for i, v := range alignForecast(gd, axis) {
			y[i] += v
		}
	}
	return render.Series{Name: render.CombinedLabel, T: axis, Y: y}
}

func groupSeries(run *runstore.Run, axis []time.Time) []render.Series {
	out := make([]render.Series, 0, len(run.Daily))
	for _, gd := range run.Daily {
		out = append(out, render.Series{Name: gd.Key.String(), T: axis, Y: alignForecast(gd, axis)})
	}
	return out
}

func comparisonSeries(run *runstore.Run, axis []time.Time) []render.ComparisonSeries {
	combined := combinedSeries(run, axis)
	combinedActual := make([]float64, len(axis))
	for _, byDate := range run.Actuals {
		for i, d := range axis {
			combinedActual[i] += byDate[d]
		}
	}

	pairs := make([]render.ComparisonSeries, 0, len(run.Daily)+1)
	pairs = append(pairs, render.ComparisonSeries{
		Name:     render.CombinedLabel,
		T:        axis,
		Forecast: combined.Y,
		Actual:   combinedActual,
	})

	for _, gd := range run.Daily {
		actual := make([]float64, len(axis))
		if byDate, exists := run.Actuals[gd.Key.String()]; exists {
			for i, d := range axis {
				actual[i] = byDate[d]
			}
		}
		pairs = append(pairs, render.ComparisonSeries{
			Name:     gd.Key.String(),
			T:        axis,
			Forecast: alignForecast(gd, axis),
			Actual:   actual,
		})
	}
	return pairs
}
