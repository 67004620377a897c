// Package forecast fits a linear trend to a time series and extrapolates it.
//
// The fit is ordinary least squares of value against time, delegated to
// gonum's stat.LinearRegression. For a fixed input the closed-form solution
// is unique, so Extend is exactly reproducible.
package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrInsufficientData is returned for series with fewer than two points.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDegenerateSeries is returned when times are not strictly increasing.
	ErrDegenerateSeries = errors.New("degenerate series")
)

// MinPoints is the smallest series a line can be fit to.
const MinPoints = 2

// Point is one sample of a series.
type Point struct {
	T         float64 `json:"t"`
	V         float64 `json:"v"`
	Predicted bool    `json:"predicted,omitempty"`
}

// Series is an ordered sequence of points.
type Series []Point

// Times returns the time of every point.
func (s Series) Times() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.T
	}
	return out
}

// Values returns the value of every point.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.V
	}
	return out
}

// Predicted returns the trailing run of predicted points.
func (s Series) Predicted() Series {
	i := len(s)
	for i > 0 && s[i-1].Predicted {
		i--
	}
	return s[i:]
}

// Tail returns the last n points (all of them when n >= len).
func (s Series) Tail(n int) Series {
	if n <= 0 {
		return Series{}
	}
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// Model is a fitted line V = Intercept + Slope*T.
type Model struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	RSquared  float64 `json:"r_squared"`
	N         int     `json:"n"`
}

// At evaluates the model at time t.
func (m Model) At(t float64) float64 {
	return m.Intercept + m.Slope*t
}

// Fit computes the least-squares line through s.
func Fit(s Series) (Model, error) {
	if err := check(s); err != nil {
		return Model{}, err
	}

	x, y := s.Times(), s.Values()
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	r2 := stat.RSquared(x, y, nil, alpha, beta)
	if math.IsNaN(r2) {
		// constant values: the horizontal line is exact
		r2 = 1
	}
	return Model{Intercept: alpha, Slope: beta, RSquared: r2, N: len(s)}, nil
}

// Step returns the smallest spacing between consecutive times. Missing
// samples leave wider gaps, so the smallest gap is the series' period.
func Step(s Series) (float64, error) {
	if err := check(s); err != nil {
		return 0, err
	}
	step := s[1].T - s[0].T
	for i := 2; i < len(s); i++ {
		if d := s[i].T - s[i-1].T; d < step {
			step = d
		}
	}
	return step, nil
}

// Extend returns s followed by horizon predicted points at the next
// horizon time steps. A horizon of 0 returns a copy of s unchanged.
func Extend(s Series, horizon int) (Series, error) {
	if horizon < 0 {
		return nil, fmt.Errorf("horizon must be >= 0, got %d", horizon)
	}
	if err := check(s); err != nil {
		return nil, err
	}

	out := make(Series, len(s), len(s)+horizon)
	copy(out, s)
	if horizon == 0 {
		return out, nil
	}

	m, err := Fit(s)
	if err != nil {
		return nil, err
	}
	step, err := Step(s)
	if err != nil {
		return nil, err
	}

	last := s[len(s)-1].T
	for k := 1; k <= horizon; k++ {
		t := last + float64(k)*step
		out = append(out, Point{T: t, V: m.At(t), Predicted: true})
	}
	return out, nil
}

func check(s Series) error {
	if len(s) < MinPoints {
		return fmt.Errorf("%w: need at least %d points, got %d", ErrInsufficientData, MinPoints, len(s))
	}
	for i := 1; i < len(s); i++ {
		if !(s[i].T > s[i-1].T) {
			return fmt.Errorf("%w: time %v does not follow %v", ErrDegenerateSeries, s[i].T, s[i-1].T)
		}
	}
	return nil
}
