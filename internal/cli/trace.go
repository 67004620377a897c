package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ghgdash/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database   string
	FlowToken  string
	Control    string
	Case       string
	Limit      int
	Incomplete bool
}

// TraceResult is the trace command output.
type TraceResult struct {
	Flows []store.Flow `json:"flows"`
	Stats TraceStats   `json:"stats"`
}

// TraceStats summarizes the listed flows.
type TraceStats struct {
	Total   int            `json:"total"`
	Pending int            `json:"pending"`
	ByCase  map[string]int `json:"by_case"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect the interaction log",
		Long: `Read the SQLite interaction log written by "serve" with tracing on.

Without --flow, lists the most recent interactions, optionally filtered
by control or outcome case. With --flow, shows a single interaction.
--incomplete lists interactions that never finished.

The database defaults to trace.db from the config.

Examples:
  ghgdash trace --db ./trace.db
  ghgdash trace --db ./trace.db --case UnknownSelection --limit 5
  ghgdash trace --db ./trace.db --flow 0190b6f2-7c1e-7d6a-9d1f-3f1c2b8e4a10
  ghgdash trace --db ./trace.db --incomplete --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the trace database (default from config)")
	cmd.Flags().StringVar(&opts.FlowToken, "flow", "", "show a single flow")
	cmd.Flags().StringVar(&opts.Control, "control", "", "only flows of this control")
	cmd.Flags().StringVar(&opts.Case, "case", "", "only flows with this outcome case")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "most recent flows to list (0 = all)")
	cmd.Flags().BoolVar(&opts.Incomplete, "incomplete", false, "list flows without a completion")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := context.Background()

	db := opts.Database
	if db == "" {
		cfg, err := loadConfig(opts.RootOptions)
		if err != nil {
			return err
		}
		db = cfg.Trace.DB
	}
	if db == "" {
		return NewExitError(ExitCommandError, "no trace database: pass --db or set trace.db")
	}

	st, err := store.Open(db)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var flows []store.Flow
	switch {
	case opts.FlowToken != "":
		f, err := st.ReadFlow(ctx, opts.FlowToken)
		if errors.Is(err, store.ErrNotFound) {
			_ = formatter.Error(ErrCodeTrace, err.Error(), nil)
			return WrapExitError(ExitFailure, "flow not found", err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read flow", err)
		}
		flows = []store.Flow{f}

	case opts.Incomplete:
		invs, err := st.FindIncomplete(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read flows", err)
		}
		flows = make([]store.Flow, len(invs))
		for i, inv := range invs {
			flows[i] = store.Flow{Invocation: inv}
		}

	default:
		flows, err = st.ListFlows(ctx, store.Filter{Control: opts.Control, Case: opts.Case, Limit: opts.Limit})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read flows", err)
		}
	}

	result := TraceResult{Flows: flows, Stats: summarize(flows)}
	return formatter.Success(result, func(w io.Writer) {
		printTrace(w, result, opts.Verbose)
	})
}

func summarize(flows []store.Flow) TraceStats {
	stats := TraceStats{Total: len(flows), ByCase: make(map[string]int)}
	for _, f := range flows {
		if f.Completion == nil {
			stats.Pending++
			continue
		}
		stats.ByCase[f.Completion.Case]++
	}
	return stats
}

func printTrace(w io.Writer, result TraceResult, verbose bool) {
	if len(result.Flows) == 0 {
		fmt.Fprintln(w, "No interactions found.")
		return
	}

	fmt.Fprintln(w, "=== Interactions ===")
	for _, f := range result.Flows {
		inv := f.Invocation
		outcome := "(pending)"
		if f.Completion != nil {
			outcome = f.Completion.Case
		}
		fmt.Fprintf(w, "  [%d] %s %s [%s] -> %s\n",
			inv.Seq, truncateID(inv.FlowToken), inv.Control, strings.Join(inv.Selection, ", "), outcome)
		if verbose && f.Completion != nil {
			fmt.Fprintf(w, "       traces=%d seq=%d\n", f.Completion.Traces, f.Completion.Seq)
			if f.Completion.Error != "" {
				fmt.Fprintf(w, "       error: %s\n", f.Completion.Error)
			}
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total:   %d\n", result.Stats.Total)
	fmt.Fprintf(w, "  Pending: %d\n", result.Stats.Pending)
	for _, c := range sortedCases(result.Stats.ByCase) {
		fmt.Fprintf(w, "  %s: %d\n", c, result.Stats.ByCase[c])
	}
}

// truncateID shortens a UUID to its first 8 characters for display.
// Other tokens are printed whole.
func truncateID(id string) string {
	if len(id) == 36 {
		return id[:8]
	}
	return id
}

func sortedCases(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
