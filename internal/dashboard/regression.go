package dashboard

import (
	"context"
	"fmt"

	"github.com/roach88/ghgdash/internal/figure"
	"github.com/roach88/ghgdash/internal/forecast"
	"github.com/roach88/ghgdash/internal/table"
)

// Trace names of the regression chart.
const (
	TraceActual    = "Actual"
	TracePredicted = "Predicted"
)

// Forecast is the regression of one country's CO2 history.
type Forecast struct {
	Country  string          `json:"country"`
	History  forecast.Series `json:"history"`
	Combined forecast.Series `json:"combined"`
	Model    forecast.Model  `json:"model"`
}

// ForecastCO2 fits the CO2 history of country and extends it by the
// configured horizon.
func ForecastCO2(app *App, country string) (*Forecast, error) {
	tbl, err := app.Tables.Table(table.CO2)
	if err != nil {
		return nil, err
	}
	points, err := tbl.History(country)
	if err != nil {
		return nil, err
	}

	history := make(forecast.Series, len(points))
	for i, p := range points {
		history[i] = forecast.Point{T: float64(p.Year), V: p.Value}
	}

	combined, err := forecast.Extend(history, app.Settings.Horizon)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", country, err)
	}
	model, err := forecast.Fit(history)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", country, err)
	}

	return &Forecast{
		Country:  country,
		History:  history,
		Combined: combined,
		Model:    model,
	}, nil
}

// PredictedTrace returns the points shown as "Predicted": a suffix of the
// combined series at most Window long.
func (f *Forecast) PredictedTrace(s Settings) forecast.Series {
	if s.PredictedOnly {
		return f.Combined.Predicted().Tail(s.Window)
	}
	return f.Combined.Tail(s.Window)
}

// Regression draws the CO2 history of the selected country and its linear
// extrapolation.
func Regression(ctx context.Context, app *App, sel Selection) (*figure.Figure, error) {
	country, err := sel.One()
	if err != nil {
		return nil, err
	}
	fc, err := ForecastCO2(app, country)
	if err != nil {
		return nil, err
	}

	fig := figure.New("CO2 Emissions Over Time", "Date", "CO2 Emissions")
	fig.AddTrace(TraceActual, fc.History.Times(), fc.History.Values())

	predicted := fc.PredictedTrace(app.Settings)
	fig.AddTrace(TracePredicted, predicted.Times(), predicted.Values())
	return fig, nil
}
