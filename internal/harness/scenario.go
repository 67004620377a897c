package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ghgdash/internal/dashboard"
	"github.com/roach88/ghgdash/internal/dispatch"
)

// Scenario is one scripted sequence of interactions.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Data are the table files, relative to the scenario file.
	Data DataFiles `yaml:"data"`

	// Settings override the default handler settings.
	Settings *SettingsOverride `yaml:"settings,omitempty"`

	// Steps are the control changes, in order.
	Steps []Step `yaml:"steps"`

	// Assertions check the recorded interaction log.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// FlowPrefix prefixes the sequential flow tokens. Defaults to Name.
	FlowPrefix string `yaml:"flow_prefix,omitempty"`
}

// DataFiles locates the emission tables.
type DataFiles struct {
	CO2 string `yaml:"co2"`
	CH4 string `yaml:"ch4"`
}

// SettingsOverride replaces individual handler settings.
type SettingsOverride struct {
	Horizon       *int  `yaml:"horizon,omitempty"`
	Window        *int  `yaml:"window,omitempty"`
	PredictedOnly *bool `yaml:"predicted_only,omitempty"`
}

func (o *SettingsOverride) apply(s *dashboard.Settings) {
	if o == nil {
		return
	}
	if o.Horizon != nil {
		s.Horizon = *o.Horizon
	}
	if o.Window != nil {
		s.Window = *o.Window
	}
	if o.PredictedOnly != nil {
		s.PredictedOnly = *o.PredictedOnly
	}
}

// Step is one control change.
type Step struct {
	Control string  `yaml:"control"`
	Value   Value   `yaml:"value"`
	Expect  *Expect `yaml:"expect,omitempty"`
}

// Value is a control value in YAML: null, one string, or a list.
type Value []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*v = Value{}
			return nil
		}
		*v = Value{node.Value}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := node.Decode(&many); err != nil {
			return err
		}
		*v = Value(many)
		return nil
	default:
		return fmt.Errorf("line %d: value must be null, a string or a list of strings", node.Line)
	}
}

// Selection converts the value for the dispatcher.
func (v Value) Selection() dashboard.Selection {
	return dashboard.Selection(append([]string{}, v...))
}

// Expect checks one step's outcome. Only the fields given are checked.
type Expect struct {
	// Case is the expected outcome, e.g. "Success" or "UnknownSelection".
	Case string `yaml:"case"`

	// Traces is the expected number of figure traces.
	Traces *int `yaml:"traces,omitempty"`

	// Points maps a trace name to its expected number of points.
	Points map[string]int `yaml:"points,omitempty"`

	// Span maps a trace name to its expected [first, last] x value.
	Span map[string][]float64 `yaml:"span,omitempty"`
}

// Assertion checks the interaction log after all steps ran.
type Assertion struct {
	// Type is trace_count or trace_order.
	Type string `yaml:"type"`

	// Control and Case filter trace_count. Empty matches any.
	Control string `yaml:"control,omitempty"`
	Case    string `yaml:"case,omitempty"`

	// Count is the expected number of matching interactions.
	Count int `yaml:"count,omitempty"`

	// Controls is the expected control order for trace_order.
	Controls []string `yaml:"controls,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceCount = "trace_count"
	AssertTraceOrder = "trace_order"
)

var knownCases = map[string]bool{
	string(dispatch.CaseSuccess):             true,
	string(dispatch.CaseUnknownSelection):    true,
	string(dispatch.CaseInsufficientHistory): true,
	string(dispatch.CaseInvalidSelection):    true,
	string(dispatch.CaseUnknownControl):      true,
	string(dispatch.CaseError):               true,
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected and data paths are resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	sc.Data.CO2 = resolve(base, sc.Data.CO2)
	sc.Data.CH4 = resolve(base, sc.Data.CH4)

	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Data.CO2 == "" || s.Data.CH4 == "" {
		return fmt.Errorf("data.co2 and data.ch4 are required")
	}
	for _, p := range []string{s.Data.CO2, s.Data.CH4} {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("data file not found: %s", p)
		}
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Control == "" {
			return fmt.Errorf("steps[%d]: control is required", i)
		}
		if step.Expect == nil {
			continue
		}
		if !knownCases[step.Expect.Case] {
			return fmt.Errorf("steps[%d].expect: unknown case %q", i, step.Expect.Case)
		}
		for name, span := range step.Expect.Span {
			if len(span) != 2 {
				return fmt.Errorf("steps[%d].expect.span[%s]: want [first, last]", i, name)
			}
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertTraceCount:
			if a.Count < 0 {
				return fmt.Errorf("assertions[%d]: count must be non-negative", i)
			}
			if a.Case != "" && !knownCases[a.Case] {
				return fmt.Errorf("assertions[%d]: unknown case %q", i, a.Case)
			}
		case AssertTraceOrder:
			if len(a.Controls) == 0 {
				return fmt.Errorf("assertions[%d]: controls list is required for trace_order", i)
			}
		case "":
			return fmt.Errorf("assertions[%d]: type is required", i)
		default:
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
	}
	return nil
}
