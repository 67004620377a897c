package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ghgdash/internal/config"
	"github.com/roach88/ghgdash/internal/dashboard"
	"github.com/roach88/ghgdash/internal/table"
)

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// newLogger builds the process logger: text on stderr, debug when verbose.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads --config (if any) and GHGDASH_* overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// loadApp loads config and tables and builds the application context.
// Every failure is a command error: nothing can be served without data.
func loadApp(opts *RootOptions, logger *slog.Logger) (*config.Config, *dashboard.App, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("loading tables", "co2", cfg.Data.CO2, "ch4", cfg.Data.CH4)
	tables, err := table.Open(cfg.Sources())
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load data", err)
	}

	app, err := dashboard.NewApp(tables, dashboard.SettingsFromConfig(cfg), logger)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "invalid dashboard setup", err)
	}
	return cfg, app, nil
}
