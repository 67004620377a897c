package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ghgdash/internal/table/tabletest"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	sc, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return sc
}

func TestRun_Scenarios(t *testing.T) {
	for _, name := range []string{"overview-defaults", "overview-small", "regression", "regression-overlay"} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRunWithGolden(t *testing.T) {
	require.NoError(t, RunWithGolden(t, loadTestScenario(t, "overview-small")))
}

func TestRun_Deterministic(t *testing.T) {
	sc := loadTestScenario(t, "regression")

	first, err := Run(sc)
	require.NoError(t, err)
	second, err := Run(sc)
	require.NoError(t, err)

	a, err := MarshalSnapshot(sc.Name, first)
	require.NoError(t, err)
	b, err := MarshalSnapshot(sc.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_StepTokensAndSeq(t *testing.T) {
	result, err := Run(loadTestScenario(t, "regression"))
	require.NoError(t, err)
	require.Len(t, result.Steps, 4)

	assert.Equal(t, "regression-0001", result.Steps[0].FlowToken)
	assert.Equal(t, int64(1), result.Steps[0].Seq)
	assert.Equal(t, "regression-0004", result.Steps[3].FlowToken)
	assert.Equal(t, int64(7), result.Steps[3].Seq)
}

func TestRun_ReportsMismatches(t *testing.T) {
	co2, ch4 := tabletest.WriteTables(t)
	three := 3
	sc := &Scenario{
		Name:        "mismatch",
		Description: "expectations that do not hold",
		Data:        DataFiles{CO2: co2, CH4: ch4},
		Steps: []Step{
			{Control: "dropdown_regression", Value: Value{"Atlantis"}, Expect: &Expect{Case: "Success"}},
			{Control: "dropdown_overview_co2", Value: Value{"Germany"}, Expect: &Expect{
				Case:   "Success",
				Traces: &three,
				Points: map[string]int{"Germany": 5, "China": 22},
				Span:   map[string][]float64{"Germany": {1990, 2021}},
			}},
		},
		Assertions: []Assertion{
			{Type: AssertTraceCount, Case: "Success", Count: 2},
			{Type: AssertTraceOrder, Controls: []string{"dropdown_overview_co2", "dropdown_regression"}},
		},
	}

	result, err := Run(sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"steps[0] dropdown_regression: case = InsufficientHistory, expected Success",
		"steps[1] dropdown_overview_co2: traces = 1, expected 3",
		`steps[1] dropdown_overview_co2: trace "China" not found`,
		`steps[1] dropdown_overview_co2: trace "Germany" has 22 points, expected 5`,
		`steps[1] dropdown_overview_co2: trace "Germany" spans [2000, 2021], expected [1990, 2021]`,
		`assertions[0] trace_count(control="", case="Success") = 1, expected 2`,
		"assertions[1] trace_order: [dropdown_overview_co2 dropdown_regression] not found in order in [dropdown_regression dropdown_overview_co2]",
	}, result.Errors)
}

func TestRun_SetupErrors(t *testing.T) {
	co2, _ := tabletest.WriteTables(t)
	sc := &Scenario{
		Name:  "broken",
		Data:  DataFiles{CO2: co2, CH4: filepath.Join(t.TempDir(), "missing.csv")},
		Steps: []Step{{Control: "dropdown_regression"}},
	}
	_, err := Run(sc)
	assert.Error(t, err)

	_, ch4 := tabletest.WriteTables(t)
	window := 0
	sc.Data.CH4 = ch4
	sc.Settings = &SettingsOverride{Window: &window}
	_, err = Run(sc)
	assert.ErrorContains(t, err, "window")
}

func TestIsSubsequence(t *testing.T) {
	assert.True(t, isSubsequence([]string{"a", "c"}, []string{"a", "b", "c"}))
	assert.True(t, isSubsequence(nil, []string{"a"}))
	assert.False(t, isSubsequence([]string{"c", "a"}, []string{"a", "b", "c"}))
	assert.False(t, isSubsequence([]string{"a", "a"}, []string{"a"}))
}

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	co2, ch4 := tabletest.WriteTables(t)
	require.NoError(t, os.Symlink(co2, filepath.Join(dir, "co2.csv")))
	require.NoError(t, os.Symlink(ch4, filepath.Join(dir, "ch4.csv")))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}
