package dashboard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ghgdash/internal/table/tabletest"
)

func newTestApp(t *testing.T, mutate ...func(*Settings)) *App {
	t.Helper()
	settings := DefaultSettings()
	for _, m := range mutate {
		m(&settings)
	}
	app, err := NewApp(tabletest.Tables(t), settings, nil)
	require.NoError(t, err)
	return app
}
