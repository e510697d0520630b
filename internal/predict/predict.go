// Package predict adapts one group's daily series to the external
// forecasting library. The model itself is a black box; this package only
// shapes input, carries the holiday windows into the model's event options
// and returns the raw daily point estimates over history plus horizon.
package predict

import (
	"fmt"
	"time"

	forecaster "github.com/aouyang1/go-forecaster"
	"github.com/aouyang1/go-forecaster/forecast/options"

	"shipcast/internal/holiday"
	"shipcast/internal/series"
)

// DefaultHorizonDays covers a full target month.
const DefaultHorizonDays = 31

// Predictor runs independent per-group forecasts with a shared horizon.
type Predictor struct {
	HorizonDays int
}

func New(horizonDays int) *Predictor {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	return &Predictor{HorizonDays: horizonDays}
}

// Forecast fits the external model on the group's history and predicts one
// value per date over history plus the horizon. An empty input series
// yields an empty forecast and no error so a group without data cannot
// abort the whole run. Model failures propagate wrapped, without retry.
func (p *Predictor) Forecast(ts *series.TimeSeries, windows []holiday.Window) (*series.TimeSeries, error) {
	if ts.Empty() {
		return &series.TimeSeries{}, nil
	}

	f, err := forecaster.New(p.modelOptions(windows))
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecaster, %w", err)
	}
	if err := f.Fit(ts.T, ts.Y); err != nil {
		return nil, fmt.Errorf("unable to fit group series, %w", err)
	}

	full := make([]time.Time, 0, len(ts.T)+p.HorizonDays)
	full = append(full, ts.T...)
	last := ts.T[len(ts.T)-1]
	for i := 1; i <= p.HorizonDays; i++ {
		full = append(full, last.AddDate(0, 0, i))
	}

	res, err := f.Predict(full)
	if err != nil {
		return nil, fmt.Errorf("unable to predict over horizon, %w", err)
	}
	return series.New(res.T, res.Forecast)
}

func (p *Predictor) modelOptions(windows []holiday.Window) *forecaster.Options {
	events := make([]options.Event, 0, len(windows))
	for _, w := range windows {
		events = append(events, options.NewEvent(w.Name, w.Start(), w.End().AddDate(0, 0, 1)))
	}

	forecastOpts := func() *options.Options {
		opt := options.NewDefaultOptions()
		opt.SeasonalityOptions = options.SeasonalityOptions{
			SeasonalityConfigs: []options.SeasonalityConfig{
				options.NewWeeklySeasonalityConfig(3),
			},
		}
		opt.EventOptions = options.EventOptions{Events: events}
		return opt
	}

	return &forecaster.Options{
		SeriesOptions: &forecaster.SeriesOptions{
			ForecastOptions: forecastOpts(),
		},
		UncertaintyOptions: &forecaster.UncertaintyOptions{
			ForecastOptions: forecastOpts(),
			ResidualWindow:  30,
			ResidualZscore:  4.0,
		},
	}
}
