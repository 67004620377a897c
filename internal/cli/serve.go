package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/ghgdash/internal/dashboard"
	"github.com/roach88/ghgdash/internal/dispatch"
	"github.com/roach88/ghgdash/internal/figure"
	"github.com/roach88/ghgdash/internal/server"
	"github.com/roach88/ghgdash/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr    string // overrides server.addr
	TraceDB string // overrides trace.db

	// FlowGenerator overrides the UUIDv7 generator (for testing).
	FlowGenerator dispatch.FlowTokenGenerator
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Long: `Load the emission tables and serve the dashboard.

The page shows the CO2 and CH4 overview panels and the CO2 regression
panel. Each control change is answered by the update callback. With a
trace database configured every interaction is also logged to SQLite.

Examples:
  ghgdash serve
  ghgdash serve --config ghgdash.yaml --addr :9000
  ghgdash serve --trace-db ./trace.db --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.TraceDB, "trace-db", "", "SQLite interaction log (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	cfg, app, err := loadApp(opts.RootOptions, logger)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}
	if opts.TraceDB != "" {
		cfg.Trace.DB = opts.TraceDB
	}
	logger.Info("tables loaded",
		"co2_countries", len(app.CO2().Countries()),
		"ch4_countries", len(app.CH4().Countries()),
		"years", fmt.Sprintf("%d-%d", app.CO2().FirstYear(), app.CO2().LastYear()))

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}

	dispatchOpts := []dispatch.Option{}
	if opts.FlowGenerator != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithFlowGenerator(opts.FlowGenerator))
	}
	if cfg.Server.RenderSVG {
		dispatchOpts = append(dispatchOpts, dispatch.WithSVG(figure.RenderOptions{}))
	}

	if cfg.Trace.DB != "" {
		st, err := store.Open(cfg.Trace.DB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open trace database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing trace database", "error", closeErr)
			}
		}()

		last, err := st.LastSeq(parentCtx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read trace database", err)
		}
		dispatchOpts = append(dispatchOpts,
			dispatch.WithRecorder(st),
			dispatch.WithClock(dispatch.NewClockAt(last)))
		logger.Info("tracing interactions", "db", cfg.Trace.DB, "resume_seq", last)
	}

	d := dispatch.New(app, dashboard.DefaultRegistry(), dispatchOpts...)
	srv, err := server.New(server.Options{Addr: cfg.Server.Addr, DevMode: cfg.Server.DevMode}, app, d)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build server", err)
	}

	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Dashboard running on http://%s/\n", displayAddr(cfg.Server.Addr))
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := srv.ListenAndServe(ctx); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}

// displayAddr turns ":8050" into "localhost:8050".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
