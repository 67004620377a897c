package harness

import "github.com/roach88/ghgdash/internal/figure"

// StepResult is the outcome of one step.
type StepResult struct {
	Control   string         `json:"control"`
	Selection []string       `json:"selection"`
	FlowToken string         `json:"flow_token"`
	Seq       int64          `json:"seq"`
	Case      string         `json:"case"`
	Figure    *figure.Figure `json:"figure,omitempty"`
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	Steps []StepResult `json:"steps"`

	// Errors are the failed checks, in the order they were found.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates an empty passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError records a failed check.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
