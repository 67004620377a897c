package dashboard

import (
	"context"
	"fmt"

	"github.com/roach88/ghgdash/internal/figure"
)

// Control and graph identifiers.
const (
	ControlOverviewCO2 = "dropdown_overview_co2"
	GraphOverviewCO2   = "graph_overview_co2"

	ControlOverviewCH4 = "dropdown_overview_ch4"
	GraphOverviewCH4   = "graph_overview_ch4"

	ControlRegression = "dropdown_regression"
	GraphRegression   = "graph_regression"
)

// Handler derives a chart from the current selection.
type Handler func(ctx context.Context, app *App, sel Selection) (*figure.Figure, error)

// Binding ties one control to the chart it drives.
type Binding struct {
	Control string
	Graph   string
	Multi   bool
	Handler Handler
}

// Registry maps control ids to bindings, keeping registration order.
type Registry struct {
	bindings map[string]Binding
	order    []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]Binding)}
}

// DefaultRegistry returns the three dashboard bindings.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, b := range []Binding{
		{Control: ControlOverviewCO2, Graph: GraphOverviewCO2, Multi: true, Handler: CO2Overview},
		{Control: ControlOverviewCH4, Graph: GraphOverviewCH4, Multi: true, Handler: CH4Overview},
		{Control: ControlRegression, Graph: GraphRegression, Multi: false, Handler: Regression},
	} {
		if err := r.Register(b); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a binding. Control ids must be unique.
func (r *Registry) Register(b Binding) error {
	if b.Control == "" || b.Graph == "" {
		return fmt.Errorf("binding needs a control and a graph id")
	}
	if b.Handler == nil {
		return fmt.Errorf("binding %s has no handler", b.Control)
	}
	if _, dup := r.bindings[b.Control]; dup {
		return fmt.Errorf("control %s already bound", b.Control)
	}
	r.bindings[b.Control] = b
	r.order = append(r.order, b.Control)
	return nil
}

// Lookup returns the binding for a control.
func (r *Registry) Lookup(control string) (Binding, bool) {
	b, ok := r.bindings[control]
	return b, ok
}

// Controls returns the bound control ids in registration order.
func (r *Registry) Controls() []string {
	return append([]string(nil), r.order...)
}
