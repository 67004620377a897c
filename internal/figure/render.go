package figure

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNothingToRender is returned by Render for figures without data.
var ErrNothingToRender = errors.New("nothing to render")

// Default canvas size in pixels.
const (
	DefaultWidth  = 960
	DefaultHeight = 420
)

var palette = []drawing.Color{
	drawing.ColorFromHex("636EFA"),
	drawing.ColorFromHex("EF553B"),
	drawing.ColorFromHex("00CC96"),
	drawing.ColorFromHex("AB63FA"),
	drawing.ColorFromHex("FFA15A"),
	drawing.ColorFromHex("19D3F3"),
	drawing.ColorFromHex("FF6692"),
	drawing.ColorFromHex("B6E880"),
}

// RenderOptions controls the canvas.
type RenderOptions struct {
	Width  int
	Height int
}

// Render writes f as an SVG document to w.
func Render(w io.Writer, f *Figure, opts RenderOptions) error {
	if f == nil || f.Empty() {
		return ErrNothingToRender
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	series := make([]chart.Series, 0, len(f.Traces))
	for i, tr := range f.Traces {
		xs, ys := present(tr)
		if len(xs) == 0 {
			continue
		}
		col := palette[i%len(palette)]
		style := chart.Style{StrokeColor: col, StrokeWidth: 2}
		if len(xs) == 1 {
			// a single sample has no line to draw
			style = chart.Style{StrokeWidth: chart.Disabled, DotWidth: 4, DotColor: col}
		}
		series = append(series, chart.ContinuousSeries{
			Name:    tr.Name,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}

	graph := chart.Chart{
		Title:  f.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:           f.XAxisTitle,
			ValueFormatter: formatYear,
		},
		YAxis: chart.YAxis{
			Name: f.YAxisTitle,
		},
		Series: series,
	}
	if r := axisRange(series, xValues); r != nil {
		graph.XAxis.Range = r
	}
	if r := axisRange(series, yValues); r != nil {
		graph.YAxis.Range = r
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return fmt.Errorf("render %q: %w", f.Title, err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// RenderString is Render into a string.
func RenderString(f *Figure, opts RenderOptions) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, f, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// present drops missing samples, which go-chart cannot draw.
func present(tr Trace) ([]float64, []float64) {
	xs := make([]float64, 0, len(tr.X))
	ys := make([]float64, 0, len(tr.Y))
	for i := range tr.X {
		if i >= len(tr.Y) || math.IsNaN(tr.Y[i]) {
			continue
		}
		xs = append(xs, tr.X[i])
		ys = append(ys, tr.Y[i])
	}
	return xs, ys
}

// axisRange widens a zero-width range so single-sample charts still render.
func axisRange(series []chart.Series, pick func(chart.ContinuousSeries) []float64) chart.Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		cs, ok := s.(chart.ContinuousSeries)
		if !ok {
			continue
		}
		for _, v := range pick(cs) {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 0) || lo != hi {
		return nil
	}
	pad := math.Max(1, math.Abs(lo)*0.05)
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func xValues(cs chart.ContinuousSeries) []float64 { return cs.XValues }

func yValues(cs chart.ContinuousSeries) []float64 { return cs.YValues }
