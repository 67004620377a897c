package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/ghgdash/internal/dashboard"
	"github.com/roach88/ghgdash/internal/figure"
	"github.com/roach88/ghgdash/internal/store"
)

// Recorder persists interactions. *store.Store implements it.
type Recorder interface {
	WriteInvocation(ctx context.Context, inv store.Invocation) error
	WriteCompletion(ctx context.Context, comp store.Completion) error
}

// Result is the outcome of one interaction, encoded as the callback
// response body.
type Result struct {
	FlowToken string         `json:"flow_token"`
	Seq       int64          `json:"seq"`
	Control   string         `json:"control"`
	Graph     string         `json:"graph,omitempty"`
	Case      Case           `json:"case"`
	Figure    *figure.Figure `json:"figure,omitempty"`
	SVG       string         `json:"svg,omitempty"`
	Error     string         `json:"error,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// OK reports whether the handler produced a figure.
func (r Result) OK() bool { return r.Case == CaseSuccess }

// Dispatcher routes control changes to their handlers.
type Dispatcher struct {
	app      *dashboard.App
	registry *dashboard.Registry
	flows    FlowTokenGenerator
	clock    Sequencer
	recorder Recorder
	svg      *figure.RenderOptions
	logger   *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithFlowGenerator replaces the UUIDv7 token generator.
func WithFlowGenerator(g FlowTokenGenerator) Option {
	return func(d *Dispatcher) { d.flows = g }
}

// WithClock replaces the logical clock.
func WithClock(c Sequencer) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// WithRecorder attaches a trace recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// WithSVG renders successful figures to SVG in Result.SVG.
func WithSVG(opts figure.RenderOptions) Option {
	return func(d *Dispatcher) { d.svg = &opts }
}

// New creates a dispatcher over app and registry.
func New(app *dashboard.App, registry *dashboard.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		app:      app,
		registry: registry,
		flows:    UUIDv7Generator{},
		clock:    NewClock(),
		logger:   app.Logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the bindings the dispatcher routes to.
func (d *Dispatcher) Registry() *dashboard.Registry { return d.registry }

// Dispatch runs the handler bound to control with the given selection.
func (d *Dispatcher) Dispatch(ctx context.Context, control string, sel dashboard.Selection) Result {
	res := Result{
		FlowToken: d.flows.Generate(),
		Seq:       d.clock.Next(),
		Control:   control,
	}
	log := d.logger.With("flow", res.FlowToken, "control", control)

	binding, ok := d.registry.Lookup(control)
	if !ok {
		return d.fail(log, res, fmt.Errorf("%w %q", ErrUnknownControl, control))
	}
	res.Graph = binding.Graph

	countries := sel.Countries()
	d.recordInvocation(ctx, log, store.Invocation{
		FlowToken: res.FlowToken,
		Control:   control,
		Selection: countries,
		Seq:       res.Seq,
	})

	res = d.run(ctx, log, binding, sel, res)

	comp := store.Completion{
		FlowToken: res.FlowToken,
		Case:      string(res.Case),
		Error:     res.Error,
		Seq:       d.clock.Next(),
	}
	if res.Figure != nil {
		comp.Traces = len(res.Figure.Traces)
	}
	d.recordCompletion(ctx, log, comp)
	return res
}

func (d *Dispatcher) run(ctx context.Context, log *slog.Logger, b dashboard.Binding, sel dashboard.Selection, res Result) Result {
	if err := ctx.Err(); err != nil {
		return d.fail(log, res, err)
	}

	fig, err := b.Handler(ctx, d.app, sel)
	if err != nil {
		return d.fail(log, res, err)
	}
	res.Case = CaseSuccess
	res.Figure = fig
	switch {
	case len(fig.Traces) == 0:
		res.Message = MessageNoSelection
	case fig.Empty():
		res.Message = MessageNoData
	}

	if d.svg != nil {
		svg, err := figure.RenderString(fig, *d.svg)
		switch {
		case errors.Is(err, figure.ErrNothingToRender):
			// the panel shows res.Message instead
		case err != nil:
			res.Figure = nil
			return d.fail(log, res, fmt.Errorf("render %s: %w", b.Graph, err))
		default:
			res.SVG = svg
		}
	}

	log.Debug("interaction handled", "seq", res.Seq, "traces", len(fig.Traces))
	return res
}

func (d *Dispatcher) fail(log *slog.Logger, res Result, err error) Result {
	res.Case = Classify(err)
	res.Error = err.Error()
	res.Message = res.Case.Message()

	if res.Case == CaseError {
		log.Error("interaction failed", "seq", res.Seq, "error", err)
	} else {
		log.Info("interaction rejected", "seq", res.Seq, "case", res.Case, "error", err)
	}
	return res
}

func (d *Dispatcher) recordInvocation(ctx context.Context, log *slog.Logger, inv store.Invocation) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.WriteInvocation(context.WithoutCancel(ctx), inv); err != nil {
		log.Warn("trace invocation failed", "error", err)
	}
}

func (d *Dispatcher) recordCompletion(ctx context.Context, log *slog.Logger, comp store.Completion) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.WriteCompletion(context.WithoutCancel(ctx), comp); err != nil {
		log.Warn("trace completion failed", "error", err)
	}
}
