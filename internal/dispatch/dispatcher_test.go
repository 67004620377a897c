package dispatch

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ghgdash/internal/dashboard"
	"github.com/roach88/ghgdash/internal/figure"
	"github.com/roach88/ghgdash/internal/store"
	"github.com/roach88/ghgdash/internal/table"
	"github.com/roach88/ghgdash/internal/table/tabletest"
	"github.com/roach88/ghgdash/internal/testutil"
)

func newTestDispatcher(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()
	app, err := dashboard.NewApp(tabletest.Tables(t), dashboard.DefaultSettings(), nil)
	require.NoError(t, err)
	base := []Option{
		WithFlowGenerator(testutil.NewSequentialFlowGenerator("flow")),
		WithClock(testutil.NewDeterministicClock()),
	}
	return New(app, dashboard.DefaultRegistry(), append(base, opts...)...)
}

func TestDispatch_Overview(t *testing.T) {
	d := newTestDispatcher(t)

	res := d.Dispatch(context.Background(), dashboard.ControlOverviewCO2,
		dashboard.Selection{"Germany", "United States", "China"})

	require.True(t, res.OK(), res.Error)
	assert.Equal(t, "flow-0001", res.FlowToken)
	assert.Equal(t, int64(1), res.Seq)
	assert.Equal(t, dashboard.GraphOverviewCO2, res.Graph)
	require.NotNil(t, res.Figure)
	require.Len(t, res.Figure.Traces, 3)
	for _, tr := range res.Figure.Traces {
		assert.Len(t, tr.X, tabletest.NumYears)
	}
	assert.Empty(t, res.SVG, "svg is off unless requested")
}

func TestDispatch_SeqAdvancesPerInteraction(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	first := d.Dispatch(ctx, dashboard.ControlRegression, dashboard.Single("Germany"))
	second := d.Dispatch(ctx, dashboard.ControlRegression, dashboard.Single("China"))

	// invocation and completion each take a tick
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(3), second.Seq)
	assert.Equal(t, "flow-0002", second.FlowToken)
}

func TestDispatch_Cases(t *testing.T) {
	tests := []struct {
		name    string
		control string
		sel     dashboard.Selection
		want    Case
	}{
		{"unknown country", dashboard.ControlOverviewCO2, dashboard.Selection{"Narnia"}, CaseUnknownSelection},
		{"single point", dashboard.ControlRegression, dashboard.Single("Atlantis"), CaseInsufficientHistory},
		{"no country", dashboard.ControlRegression, dashboard.Selection{}, CaseInvalidSelection},
		{"two countries", dashboard.ControlRegression, dashboard.Selection{"Germany", "China"}, CaseInvalidSelection},
		{"unknown control", "dropdown_nope", dashboard.Selection{}, CaseUnknownControl},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDispatcher(t)
			res := d.Dispatch(context.Background(), tt.control, tt.sel)
			assert.Equal(t, tt.want, res.Case)
			assert.NotEmpty(t, res.Error)
			assert.Equal(t, tt.want.Message(), res.Message)
			assert.Nil(t, res.Figure)
		})
	}
}

func TestDispatch_ErrorsStayLocal(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	bad := d.Dispatch(ctx, dashboard.ControlOverviewCO2, dashboard.Selection{"Narnia"})
	assert.Equal(t, CaseUnknownSelection, bad.Case)

	good := d.Dispatch(ctx, dashboard.ControlOverviewCH4, dashboard.Selection{"Germany"})
	assert.True(t, good.OK())
}

func TestDispatch_CanceledContext(t *testing.T) {
	d := newTestDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := d.Dispatch(ctx, dashboard.ControlOverviewCO2, dashboard.Selection{"Germany"})
	assert.Equal(t, CaseError, res.Case)
	assert.Contains(t, res.Error, "context canceled")
}

func TestDispatch_SVG(t *testing.T) {
	d := newTestDispatcher(t, WithSVG(figure.RenderOptions{Width: 640, Height: 320}))
	ctx := context.Background()

	res := d.Dispatch(ctx, dashboard.ControlRegression, dashboard.Single("Germany"))
	require.True(t, res.OK(), res.Error)
	assert.Contains(t, res.SVG, "<svg")

	empty := d.Dispatch(ctx, dashboard.ControlOverviewCO2, dashboard.Selection{})
	require.True(t, empty.OK())
	assert.Empty(t, empty.SVG)
	assert.Empty(t, empty.Figure.Traces)
}

func TestDispatch_RecordsTrace(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	d := newTestDispatcher(t, WithRecorder(s))
	ctx := context.Background()

	ok := d.Dispatch(ctx, dashboard.ControlOverviewCO2, dashboard.Selection{"Germany", "Germany", "China"})
	bad := d.Dispatch(ctx, dashboard.ControlRegression, dashboard.Single("Atlantis"))

	f, err := s.ReadFlow(ctx, ok.FlowToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"Germany", "China"}, f.Invocation.Selection)
	assert.Equal(t, ok.Seq, f.Invocation.Seq)
	require.NotNil(t, f.Completion)
	assert.Equal(t, "Success", f.Completion.Case)
	assert.Equal(t, 2, f.Completion.Traces)

	f, err = s.ReadFlow(ctx, bad.FlowToken)
	require.NoError(t, err)
	assert.Equal(t, "InsufficientHistory", f.Completion.Case)
	assert.Equal(t, bad.Error, f.Completion.Error)

	seq, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), seq)
}

type failingRecorder struct {
	mu    sync.Mutex
	calls int
}

func (r *failingRecorder) WriteInvocation(context.Context, store.Invocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return errors.New("disk full")
}

func (r *failingRecorder) WriteCompletion(context.Context, store.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return errors.New("disk full")
}

func TestDispatch_RecorderFailureIsNotSurfaced(t *testing.T) {
	rec := &failingRecorder{}
	d := newTestDispatcher(t, WithRecorder(rec))

	res := d.Dispatch(context.Background(), dashboard.ControlOverviewCO2, dashboard.Selection{"Germany"})
	assert.True(t, res.OK())
	assert.Equal(t, 2, rec.calls)
}

func TestDispatch_Concurrent(t *testing.T) {
	app, err := dashboard.NewApp(tabletest.Tables(t), dashboard.DefaultSettings(), nil)
	require.NoError(t, err)
	d := New(app, dashboard.DefaultRegistry())

	var wg sync.WaitGroup
	results := make([]Result, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = d.Dispatch(context.Background(), dashboard.ControlRegression, dashboard.Single("China"))
		}(i)
	}
	wg.Wait()

	tokens := make(map[string]bool)
	for _, r := range results {
		assert.True(t, r.OK())
		tokens[r.FlowToken] = true
	}
	assert.Len(t, tokens, len(results))
}

func TestDispatch_NothingToDrawMessages(t *testing.T) {
	years := []int{2000, 2001, 2002}
	nan := math.NaN()
	co2, err := table.New(table.CO2, years, []string{"Germany", "Ghostland"},
		[][]float64{{900, 895, 890}, {nan, nan, nan}})
	require.NoError(t, err)
	ch4, err := table.New(table.CH4, years, []string{"Germany"}, [][]float64{{50, 51, 52}})
	require.NoError(t, err)
	tables, err := table.NewStore(co2, ch4)
	require.NoError(t, err)
	app, err := dashboard.NewApp(tables, dashboard.DefaultSettings(), nil)
	require.NoError(t, err)

	for _, svg := range []bool{false, true} {
		var opts []Option
		if svg {
			opts = append(opts, WithSVG(figure.RenderOptions{}))
		}
		d := New(app, dashboard.DefaultRegistry(), opts...)
		ctx := context.Background()

		empty := d.Dispatch(ctx, dashboard.ControlOverviewCO2, dashboard.Selection{})
		require.True(t, empty.OK(), empty.Error)
		assert.Equal(t, MessageNoSelection, empty.Message)
		assert.Empty(t, empty.SVG)

		ghost := d.Dispatch(ctx, dashboard.ControlOverviewCO2, dashboard.Selection{"Ghostland"})
		require.True(t, ghost.OK(), ghost.Error)
		require.Len(t, ghost.Figure.Traces, 1)
		assert.Equal(t, MessageNoData, ghost.Message)
		assert.Empty(t, ghost.SVG)

		drawn := d.Dispatch(ctx, dashboard.ControlOverviewCO2, dashboard.Selection{"Germany", "Ghostland"})
		require.True(t, drawn.OK(), drawn.Error)
		assert.Empty(t, drawn.Message)
		assert.Equal(t, svg, drawn.SVG != "")
	}
}
