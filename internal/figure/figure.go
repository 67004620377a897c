// Package figure describes line charts and renders them to SVG.
//
// A Figure is the output of every dashboard handler. It is plain data:
// handlers build it, the server serializes it as JSON for the browser, and
// Render turns it into an SVG document with go-chart.
package figure

import (
	"encoding/json"
	"math"
	"strconv"
)

// Mode values for a trace.
const (
	ModeLines = "lines"
)

// Values is a slice of floats where NaN marks a missing sample.
// It encodes NaN as JSON null.
type Values []float64

// MarshalJSON implements json.Marshaler.
func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	buf := make([]byte, 0, 2+len(v)*8)
	buf = append(buf, '[')
	for i, f := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf = append(buf, "null"...)
			continue
		}
		b, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		buf = append(buf, b...)
	}
	return append(buf, ']'), nil
}

// UnmarshalJSON implements json.Unmarshaler; null decodes to NaN.
func (v *Values) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Values, len(raw))
	for i, p := range raw {
		if p == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *p
	}
	*v = out
	return nil
}

// Trace is one named line.
type Trace struct {
	Name string `json:"name"`
	Mode string `json:"mode"`
	X    Values `json:"x"`
	Y    Values `json:"y"`
}

// Len returns the number of points.
func (t Trace) Len() int { return len(t.X) }

// Figure is a line chart description.
type Figure struct {
	Title       string  `json:"title"`
	XAxisTitle  string  `json:"xaxis_title"`
	YAxisTitle  string  `json:"yaxis_title"`
	LegendTitle string  `json:"legend_title,omitempty"`
	Traces      []Trace `json:"traces"`
}

// New returns an empty figure with the given titles.
func New(title, xTitle, yTitle string) *Figure {
	return &Figure{
		Title:      title,
		XAxisTitle: xTitle,
		YAxisTitle: yTitle,
		Traces:     []Trace{},
	}
}

// AddTrace appends a line. x and y must have equal length.
func (f *Figure) AddTrace(name string, x, y []float64) {
	f.Traces = append(f.Traces, Trace{
		Name: name,
		Mode: ModeLines,
		X:    append(Values(nil), x...),
		Y:    append(Values(nil), y...),
	})
}

// Trace returns the trace with the given name.
func (f *Figure) Trace(name string) (Trace, bool) {
	for _, t := range f.Traces {
		if t.Name == name {
			return t, true
		}
	}
	return Trace{}, false
}

// Empty reports whether the figure has nothing to draw.
func (f *Figure) Empty() bool {
	for _, t := range f.Traces {
		for _, y := range t.Y {
			if !math.IsNaN(y) {
				return false
			}
		}
	}
	return true
}

// Years converts integer years to an x axis.
func Years(years []int) []float64 {
	out := make([]float64, len(years))
	for i, y := range years {
		out[i] = float64(y)
	}
	return out
}

// formatYear renders an axis value as a whole year.
func formatYear(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(math.Round(f), 'f', 0, 64)
	}
	return ""
}
