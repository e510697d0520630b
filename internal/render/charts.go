package render

import (
	"bytes"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"shipcast/internal/aggregate"
)

// CombinedLabel names the cross-group sum series shown by default on every
// chart; individual group series start toggled off.
const CombinedLabel = "All Groups"

// Series is one named line on a chart.
type Series struct {
	Name string
	T    []time.Time
	Y    []float64
}

// ComparisonSeries pairs a group's forecast line with its observed actuals.
// Dates without uploaded actuals carry zero.
type ComparisonSeries struct {
	Name     string
	T        []time.Time
	Forecast []float64
	Actual   []float64
}

func axisLabels(t []time.Time) []string {
	labels := make([]string, 0, len(t))
	for _, currT := range t {
		labels = append(labels, currT.Format(time.DateOnly))
	}
	return labels
}

func lineData(y []float64) []opts.LineData {
	data := make([]opts.LineData, 0, len(y))
	for _, v := range y {
		data = append(data, opts.LineData{Value: v})
	}
	return data
}

// ForecastChart builds a multi-series line chart with the combined series
// visible and one toggleable series per group.
func ForecastChart(title string, combined Series, groups []Series) *charts.Line {
	selected := map[string]bool{combined.Name: true}
	for _, g := range groups {
		selected[g.Name] = false
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{Selected: selected}),
	)

	line = line.SetXAxis(axisLabels(combined.T))
	line = line.AddSeries(combined.Name, lineData(combined.Y))
	for _, g := range groups {
		line = line.AddSeries(g.Name, lineData(g.Y))
	}
	return line
}

// ComparisonChart builds forecast-vs-actual line pairs, actuals dashed. The
// combined pair is visible by default and every group pair toggleable.
func ComparisonChart(title string, pairs []ComparisonSeries) *charts.Line {
	selected := make(map[string]bool, 2*len(pairs))
	for i, p := range pairs {
		visible := i == 0
		selected[p.Name+" (Forecast)"] = visible
		selected[p.Name+" (Actual)"] = visible
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{Selected: selected}),
	)

	if len(pairs) > 0 {
		line = line.SetXAxis(axisLabels(pairs[0].T))
	}
	for _, p := range pairs {
		line = line.AddSeries(p.Name+" (Forecast)", lineData(p.Forecast))
		line = line.AddSeries(p.Name+" (Actual)", lineData(p.Actual),
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}),
		)
	}
	return line
}

// AreaSummaryChart builds a grouped bar chart with one bar series per area
// over the reference and forecast periods.
func AreaSummaryChart(title, refLabel, forecastLabel string, areas []aggregate.Result) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
	)

	bar = bar.SetXAxis([]string{refLabel, forecastLabel})
	for _, area := range areas {
		bar.AddSeries(area.Key.String(), []opts.BarData{
			{Value: area.ReferenceTotal},
			{Value: area.ForecastTotal},
		})
	}
	return bar
}

// PageHTML renders charts into a single embeddable HTML page.
func PageHTML(chartList ...components.Charter) (string, error) {
	page := components.NewPage()
	page.AddCharts(chartList...)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
