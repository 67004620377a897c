package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ghgdash/internal/table/tabletest"
)

// writeConfig writes a YAML config pointing at the fixture tables, with
// extra appended verbatim.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	co2, ch4 := tabletest.WriteTables(t)
	path := filepath.Join(t.TempDir(), "ghgdash.yaml")
	body := fmt.Sprintf("data:\n  co2: %s\n  ch4: %s\n%s", co2, ch4, extra)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
