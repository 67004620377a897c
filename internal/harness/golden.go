package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden-file form of a scenario run.
type Snapshot struct {
	Scenario string       `json:"scenario"`
	Steps    []StepResult `json:"steps"`
}

// MarshalSnapshot renders a result as indented JSON.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	return json.MarshalIndent(Snapshot{Scenario: name, Steps: result.Steps}, "", "  ")
}

// RunWithGolden runs a scenario, fails t on unmet expectations, and
// compares the steps against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, sc *Scenario) error {
	t.Helper()

	result, err := Run(sc)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	return AssertGolden(t, sc.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
