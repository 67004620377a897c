package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/ghgdash/internal/dashboard"
	"github.com/roach88/ghgdash/internal/forecast"
	"github.com/roach88/ghgdash/internal/table"
)

// ForecastOptions holds flags for the forecast command.
type ForecastOptions struct {
	*RootOptions
	Horizon int // -1 keeps the configured horizon
}

// ForecastResult is the forecast command output.
type ForecastResult struct {
	Country   string          `json:"country"`
	Model     forecast.Model  `json:"model"`
	Predicted forecast.Series `json:"predicted"`
}

// NewForecastCommand creates the forecast command.
func NewForecastCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ForecastOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "forecast <country>",
		Short: "Print the linear CO2 forecast for a country",
		Long: `Fit a line to a country's CO2 history and print the extrapolated years.

Exit codes:
  0 - Forecast printed
  1 - Country unknown or with fewer than two data points
  2 - Command error (bad config, unreadable tables)

Examples:
  ghgdash forecast Germany
  ghgdash forecast "United States" --horizon 25
  ghgdash forecast China --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForecast(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Horizon, "horizon", -1, "periods to extrapolate (default from config)")

	return cmd
}

func runForecast(opts *ForecastOptions, country string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	_, app, err := loadApp(opts.RootOptions, logger)
	if err != nil {
		return err
	}
	if opts.Horizon >= 0 {
		app.Settings.Horizon = opts.Horizon
	}

	fc, err := dashboard.ForecastCO2(app, country)
	if err != nil {
		code := ErrCodeForecast
		switch {
		case errors.Is(err, table.ErrUnknownCountry):
			code = ErrCodeUnknownCountry
		case errors.Is(err, forecast.ErrInsufficientData):
			code = ErrCodeInsufficientHistory
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "forecast failed", err)
	}

	result := ForecastResult{
		Country:   fc.Country,
		Model:     fc.Model,
		Predicted: fc.Combined.Predicted(),
	}
	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "CO2 forecast for %s\n", result.Country)
		fmt.Fprintf(w, "  fit over %d years: slope %.4f/year, R² %.4f\n",
			result.Model.N, result.Model.Slope, result.Model.RSquared)
		if len(result.Predicted) == 0 {
			fmt.Fprintln(w, "  (horizon 0: nothing predicted)")
			return
		}
		for _, p := range result.Predicted {
			fmt.Fprintf(w, "  %4.0f  %12.3f\n", p.T, p.V)
		}
	})
}
