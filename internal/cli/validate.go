package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/ghgdash/internal/config"
	"github.com/roach88/ghgdash/internal/dashboard"
	"github.com/roach88/ghgdash/internal/table"
)

// TableSummary describes one loaded table.
type TableSummary struct {
	Path      string `json:"path"`
	Countries int    `json:"countries"`
	FirstYear int    `json:"first_year"`
	LastYear  int    `json:"last_year"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                    `json:"valid"`
	Config *config.Config          `json:"config,omitempty"`
	Tables map[string]TableSummary `json:"tables,omitempty"`
	// Warnings lists default countries missing from a table.
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check config and data tables without serving",
		Long: `Load the configuration and both emission tables and report problems.

Checks the config against its schema, parses the tables and reports
default countries that are missing from the data.

Exit codes:
  0 - Config and tables are usable
  2 - Config or table error`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	tables, err := table.Open(cfg.Sources())
	if err != nil {
		var details any
		var le *table.LoadError
		if errors.As(err, &le) {
			details = map[string]any{"table": le.Table, "path": le.Path, "line": le.Line}
		}
		_ = formatter.Error(ErrCodeData, err.Error(), details)
		return WrapExitError(ExitCommandError, "invalid data", err)
	}

	result := ValidationResult{
		Valid:  true,
		Config: cfg,
		Tables: make(map[string]TableSummary),
	}
	sources := cfg.Sources()
	for _, name := range tables.Names() {
		t := tables.MustTable(name)
		result.Tables[name] = TableSummary{
			Path:      sources[name],
			Countries: len(t.Countries()),
			FirstYear: t.FirstYear(),
			LastYear:  t.LastYear(),
		}
	}
	result.Warnings = missingDefaults(tables, dashboard.SettingsFromConfig(cfg))

	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintln(w, "✓ Config valid")
		for _, name := range tables.Names() {
			s := result.Tables[name]
			fmt.Fprintf(w, "✓ %s: %d countries, %d-%d (%s)\n", name, s.Countries, s.FirstYear, s.LastYear, s.Path)
		}
		for _, warn := range result.Warnings {
			fmt.Fprintf(w, "! %s\n", warn)
		}
	})
}

func missingDefaults(tables *table.Store, s dashboard.Settings) []string {
	var warnings []string
	for _, name := range []string{table.CO2, table.CH4} {
		t := tables.MustTable(name)
		for _, c := range dashboard.Selection(s.OverviewDefaults).Countries() {
			if !t.Has(c) {
				warnings = append(warnings, fmt.Sprintf("overview default %q not in %s", c, name))
			}
		}
	}
	if !tables.MustTable(table.CO2).Has(s.RegressionDefault) {
		warnings = append(warnings, fmt.Sprintf("regression default %q not in %s", s.RegressionDefault, table.CO2))
	}
	return warnings
}
