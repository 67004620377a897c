package harness

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/roach88/ghgdash/internal/store"
)

// checkExpect returns one message per mismatch between sr and e.
func checkExpect(sr StepResult, e Expect) []string {
	var errs []string
	if sr.Case != e.Case {
		errs = append(errs, fmt.Sprintf("case = %s, expected %s", sr.Case, e.Case))
		return errs
	}

	if e.Traces == nil && len(e.Points) == 0 && len(e.Span) == 0 {
		return errs
	}
	if sr.Figure == nil {
		return append(errs, "no figure to check")
	}

	if e.Traces != nil && len(sr.Figure.Traces) != *e.Traces {
		errs = append(errs, fmt.Sprintf("traces = %d, expected %d", len(sr.Figure.Traces), *e.Traces))
	}

	for _, name := range sortedKeys(e.Points) {
		tr, ok := sr.Figure.Trace(name)
		if !ok {
			errs = append(errs, fmt.Sprintf("trace %q not found", name))
			continue
		}
		if tr.Len() != e.Points[name] {
			errs = append(errs, fmt.Sprintf("trace %q has %d points, expected %d", name, tr.Len(), e.Points[name]))
		}
	}

	for _, name := range sortedKeys(e.Span) {
		want := e.Span[name]
		tr, ok := sr.Figure.Trace(name)
		if !ok {
			errs = append(errs, fmt.Sprintf("trace %q not found", name))
			continue
		}
		if tr.Len() == 0 {
			errs = append(errs, fmt.Sprintf("trace %q is empty, expected span %v", name, want))
			continue
		}
		first, last := tr.X[0], tr.X[tr.Len()-1]
		if !near(first, want[0]) || !near(last, want[1]) {
			errs = append(errs, fmt.Sprintf("trace %q spans [%g, %g], expected [%g, %g]", name, first, last, want[0], want[1]))
		}
	}
	return errs
}

func (h *Harness) checkAssertions(ctx context.Context, assertions []Assertion, result *Result) error {
	for i, a := range assertions {
		switch a.Type {
		case AssertTraceCount:
			flows, err := h.store.ListFlows(ctx, store.Filter{Control: a.Control, Case: a.Case})
			if err != nil {
				return fmt.Errorf("assertions[%d]: %w", i, err)
			}
			if len(flows) != a.Count {
				result.AddError(fmt.Sprintf("assertions[%d] trace_count(control=%q, case=%q) = %d, expected %d",
					i, a.Control, a.Case, len(flows), a.Count))
			}

		case AssertTraceOrder:
			flows, err := h.store.ListFlows(ctx, store.Filter{})
			if err != nil {
				return fmt.Errorf("assertions[%d]: %w", i, err)
			}
			got := make([]string, len(flows))
			for j, f := range flows {
				got[j] = f.Invocation.Control
			}
			if !isSubsequence(a.Controls, got) {
				result.AddError(fmt.Sprintf("assertions[%d] trace_order: %v not found in order in %v", i, a.Controls, got))
			}
		}
	}
	return nil
}

// isSubsequence reports whether want appears in got in order, not
// necessarily adjacent.
func isSubsequence(want, got []string) bool {
	j := 0
	for _, g := range got {
		if j < len(want) && g == want[j] {
			j++
		}
	}
	return j == len(want)
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
