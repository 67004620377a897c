package dashboard

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/ghgdash/internal/config"
	"github.com/roach88/ghgdash/internal/table"
)

// Settings are the tunable values handlers read.
type Settings struct {
	// Horizon is the number of periods the regression is extrapolated.
	Horizon int
	// Window caps the length of the "Predicted" trace.
	Window int
	// PredictedOnly restricts "Predicted" to forecast points.
	PredictedOnly bool

	OverviewDefaults  []string
	RegressionDefault string
}

// DefaultSettings mirrors config.Default.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.Default())
}

// SettingsFromConfig extracts handler settings from a loaded config.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Horizon:           cfg.Regression.Horizon,
		Window:            cfg.Regression.Window,
		PredictedOnly:     cfg.Regression.PredictedOnly,
		OverviewDefaults:  append([]string(nil), cfg.Panels.OverviewDefaults...),
		RegressionDefault: cfg.Panels.RegressionDefault,
	}
}

// App is the application context handed to every handler.
// It is built once at startup and read-only afterwards.
type App struct {
	Tables   *table.Store
	Settings Settings
	Logger   *slog.Logger
}

// NewApp checks that the required tables are present and the settings
// are usable.
func NewApp(tables *table.Store, settings Settings, logger *slog.Logger) (*App, error) {
	if tables == nil {
		return nil, fmt.Errorf("tables are required")
	}
	if err := tables.Require(table.CO2, table.CH4); err != nil {
		return nil, err
	}
	if settings.Horizon < 0 {
		return nil, fmt.Errorf("horizon must be >= 0, got %d", settings.Horizon)
	}
	if settings.Window < 1 {
		return nil, fmt.Errorf("window must be >= 1, got %d", settings.Window)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &App{Tables: tables, Settings: settings, Logger: logger}, nil
}

// CO2 returns the CO2 table.
func (a *App) CO2() *table.Table { return a.Tables.MustTable(table.CO2) }

// CH4 returns the CH4 table.
func (a *App) CH4() *table.Table { return a.Tables.MustTable(table.CH4) }
