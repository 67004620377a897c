package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/ghgdash/internal/dashboard"
	"github.com/roach88/ghgdash/internal/dispatch"
	"github.com/roach88/ghgdash/internal/store"
	"github.com/roach88/ghgdash/internal/table"
	"github.com/roach88/ghgdash/internal/testutil"
)

// Harness runs the steps of one scenario.
type Harness struct {
	dispatcher *dispatch.Dispatcher
	store      *store.Store
	clock      *testutil.DeterministicClock
	flows      *testutil.SequentialFlowGenerator
}

// Run executes a scenario and returns its result.
//
// The returned error is for setup failures (unreadable tables, bad
// settings). Failed expectations are reported in Result.Errors.
func Run(sc *Scenario) (*Result, error) {
	tables, err := table.Open(map[string]string{
		table.CO2: sc.Data.CO2,
		table.CH4: sc.Data.CH4,
	})
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}

	settings := dashboard.DefaultSettings()
	sc.Settings.apply(&settings)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := dashboard.NewApp(tables, settings, logger)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	prefix := sc.FlowPrefix
	if prefix == "" {
		prefix = sc.Name
	}
	h := &Harness{
		store: st,
		clock: testutil.NewDeterministicClock(),
		flows: testutil.NewSequentialFlowGenerator(prefix),
	}
	h.dispatcher = dispatch.New(app, dashboard.DefaultRegistry(),
		dispatch.WithFlowGenerator(h.flows),
		dispatch.WithClock(h.clock),
		dispatch.WithRecorder(st),
	)

	ctx := context.Background()
	result := NewResult()
	for i, step := range sc.Steps {
		sr := h.runStep(ctx, step)
		result.Steps = append(result.Steps, sr)
		if step.Expect != nil {
			for _, msg := range checkExpect(sr, *step.Expect) {
				result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, step.Control, msg))
			}
		}
	}

	if err := h.checkAssertions(ctx, sc.Assertions, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (h *Harness) runStep(ctx context.Context, step Step) StepResult {
	sel := step.Value.Selection()
	res := h.dispatcher.Dispatch(ctx, step.Control, sel)
	return StepResult{
		Control:   step.Control,
		Selection: sel.Countries(),
		FlowToken: res.FlowToken,
		Seq:       res.Seq,
		Case:      string(res.Case),
		Figure:    res.Figure,
	}
}
