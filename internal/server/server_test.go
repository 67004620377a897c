package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ghgdash/internal/dashboard"
	"github.com/roach88/ghgdash/internal/dispatch"
	"github.com/roach88/ghgdash/internal/figure"
	"github.com/roach88/ghgdash/internal/table/tabletest"
	"github.com/roach88/ghgdash/internal/testutil"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return buildTestServer(t, dashboard.DefaultSettings(), dispatch.WithSVG(figure.RenderOptions{}))
}

func buildTestServer(t *testing.T, settings dashboard.Settings, opts ...dispatch.Option) *Server {
	t.Helper()
	app, err := dashboard.NewApp(tabletest.Tables(t), settings, nil)
	require.NoError(t, err)
	base := []dispatch.Option{
		dispatch.WithFlowGenerator(testutil.NewSequentialFlowGenerator("flow")),
		dispatch.WithClock(testutil.NewDeterministicClock()),
	}
	d := dispatch.New(app, dashboard.DefaultRegistry(), append(base, opts...)...)
	s, err := New(Options{Addr: "127.0.0.1:0"}, app, d)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestPage(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "CO2 and CH4 Emissions Dashboard")
	assert.Contains(t, body, `id="`+dashboard.GraphRegression+`"`)
	// defaults are drawn server side
	assert.Equal(t, 3, strings.Count(body, "<svg"))
}

func TestPage_WithoutSVG(t *testing.T) {
	s := buildTestServer(t, dashboard.DefaultSettings())

	rec := do(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.NotContains(t, body, "<svg")
	// every panel is fetched and drawn from figure JSON on load
	assert.Equal(t, 3, strings.Count(body, `class="state loading"`))
	assert.Contains(t, body, "drawFigure(graph, fig)")
}

func TestUpdate_WithoutSVGReturnsFigure(t *testing.T) {
	s := buildTestServer(t, dashboard.DefaultSettings())

	rec := do(t, s, http.MethodPost, "/_dash-update-component",
		`{"control":"dropdown_overview_co2","value":["Germany"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeResult(t, rec)
	assert.Equal(t, "Success", res["case"])
	assert.Empty(t, res["svg"])
	assert.Empty(t, res["message"])
	traces := res["figure"].(map[string]any)["traces"].([]any)
	require.Len(t, traces, 1)
	assert.Equal(t, "Germany", traces[0].(map[string]any)["name"])

	rec = do(t, s, http.MethodPost, "/_dash-update-component",
		`{"control":"dropdown_overview_co2","value":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	res = decodeResult(t, rec)
	assert.Equal(t, "Success", res["case"])
	assert.Equal(t, dispatch.MessageNoSelection, res["message"])
}

func TestPage_EmptyDefaultsShowState(t *testing.T) {
	settings := dashboard.DefaultSettings()
	settings.OverviewDefaults = nil

	for _, opts := range [][]dispatch.Option{nil, {dispatch.WithSVG(figure.RenderOptions{})}} {
		s := buildTestServer(t, settings, opts...)
		body := do(t, s, http.MethodGet, "/", "").Body.String()
		assert.Equal(t, 2, strings.Count(body, `<div class="state">No countries selected.</div>`))
	}
}

func TestUpdate_Overview(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/_dash-update-component",
		`{"control":"dropdown_overview_co2","value":["Germany","United States","China"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeResult(t, rec)
	assert.Equal(t, "Success", res["case"])
	assert.Equal(t, dashboard.GraphOverviewCO2, res["graph"])
	assert.Contains(t, res["svg"], "<svg")

	fig := res["figure"].(map[string]any)
	traces := fig["traces"].([]any)
	require.Len(t, traces, 3)
	x := traces[0].(map[string]any)["x"].([]any)
	assert.Len(t, x, tabletest.NumYears)
	assert.Equal(t, float64(tabletest.FirstYear), x[0])
}

func TestUpdate_SingleValueAsString(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/_dash-update-component",
		`{"control":"dropdown_regression","value":"Germany"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Success", decodeResult(t, rec)["case"])
}

func TestUpdate_PanelErrorsAre200(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		body string
		want string
	}{
		{`{"control":"dropdown_overview_co2","value":["Narnia"]}`, "UnknownSelection"},
		{`{"control":"dropdown_regression","value":"Atlantis"}`, "InsufficientHistory"},
		{`{"control":"dropdown_regression","value":null}`, "InvalidSelection"},
	}
	for _, tt := range tests {
		rec := do(t, s, http.MethodPost, "/_dash-update-component", tt.body)
		require.Equal(t, http.StatusOK, rec.Code, tt.body)
		res := decodeResult(t, rec)
		assert.Equal(t, tt.want, res["case"])
		assert.NotEmpty(t, res["message"])
	}
}

func TestUpdate_UnknownControl(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/_dash-update-component", `{"control":"dropdown_nope","value":[]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "UnknownControl", decodeResult(t, rec)["case"])
}

func TestUpdate_BadRequest(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{`not json`, `{"value":["Germany"]}`, `{"control":"dropdown_regression","value":42}`} {
		rec := do(t, s, http.MethodPost, "/_dash-update-component", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeResult(t, rec)
	assert.Equal(t, "ok", res["status"])
	co2 := res["tables"].(map[string]any)["co2"].(map[string]any)
	assert.Equal(t, float64(4), co2["countries"])
	assert.Equal(t, float64(tabletest.LastYear), co2["last_year"])
}

func TestForecastAPI(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/forecast/Germany", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	assert.Len(t, res["predicted"], 10)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/forecast/Narnia", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, s, http.MethodGet, "/api/forecast/Atlantis", "").Code)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	s := newTestServer(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s.httpServer.Addr = l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + s.httpServer.Addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
