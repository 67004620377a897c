package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := writeConfig(t, "")
	db := filepath.Join(t.TempDir(), "trace.db")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfg, "serve", "--addr", "127.0.0.1:0", "--trace-db", db})
	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.Contains(t, out.String(), "Dashboard running on http://127.0.0.1:0/")

	// the initial page render dispatches one interaction per panel
	traced, err := execute(t, "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, traced, "Total:   3")
	assert.Contains(t, traced, "Success: 3")
}

func TestServe_BadConfig(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "serve")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDisplayAddr(t *testing.T) {
	assert.Equal(t, "localhost:8050", displayAddr(":8050"))
	assert.Equal(t, "0.0.0.0:80", displayAddr("0.0.0.0:80"))
}
