package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearly(start int, values ...float64) Series {
	s := make(Series, len(values))
	for i, v := range values {
		s[i] = Point{T: float64(start + i), V: v}
	}
	return s
}

func TestFit_ExactLine(t *testing.T) {
	s := yearly(2000, 900, 895, 890, 885, 880)

	m, err := Fit(s)
	require.NoError(t, err)
	assert.InDelta(t, -5.0, m.Slope, 1e-9)
	assert.InDelta(t, 900.0, m.At(2000), 1e-6)
	assert.InDelta(t, 1.0, m.RSquared, 1e-9)
	assert.Equal(t, 5, m.N)
}

func TestFit_ConstantSeries(t *testing.T) {
	m, err := Fit(yearly(2000, 3, 3, 3))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, m.Slope, 1e-12)
	assert.Equal(t, 1.0, m.RSquared)
}

func TestExtend_AppendsHorizonPoints(t *testing.T) {
	s := yearly(2000, 10, 12, 14, 16)

	out, err := Extend(s, 3)
	require.NoError(t, err)
	require.Len(t, out, 7)

	assert.Equal(t, s, out[:4], "history is kept verbatim")
	for i, want := range []struct{ t, v float64 }{{2004, 18}, {2005, 20}, {2006, 22}} {
		p := out[4+i]
		assert.True(t, p.Predicted)
		assert.Equal(t, want.t, p.T)
		assert.InDelta(t, want.v, p.V, 1e-6)
	}

	assert.Len(t, out.Predicted(), 3)
}

func TestExtend_InfersStepFromSpacing(t *testing.T) {
	s := Series{{T: 0, V: 1}, {T: 5, V: 2}, {T: 10, V: 3}}

	out, err := Extend(s, 2)
	require.NoError(t, err)
	assert.Equal(t, 15.0, out[3].T)
	assert.Equal(t, 20.0, out[4].T)
	assert.InDelta(t, 5.0, out[4].V, 1e-9)
}

func TestExtend_GapKeepsPeriod(t *testing.T) {
	// 2002 is missing
	s := Series{{T: 2000, V: 10}, {T: 2001, V: 11}, {T: 2003, V: 13}}

	step, err := Step(s)
	require.NoError(t, err)
	assert.Equal(t, 1.0, step)

	out, err := Extend(s, 3)
	require.NoError(t, err)
	pred := out.Predicted()
	require.Len(t, pred, 3)
	assert.Equal(t, []float64{2004, 2005, 2006}, pred.Times())
	assert.InDelta(t, 14.0, pred[0].V, 1e-9)
}

func TestExtend_Deterministic(t *testing.T) {
	s := yearly(1990, 3.1, 2.7, 4.4, 5.9, 5.2, 6.8, 7.7)

	a, err := Extend(s, 10)
	require.NoError(t, err)
	b, err := Extend(s, 10)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExtend_HorizonZeroRoundTrip(t *testing.T) {
	s := yearly(2000, 1, 4, 2, 8)

	out, err := Extend(s, 5)
	require.NoError(t, err)

	again, err := Extend(out, 0)
	require.NoError(t, err)
	assert.Equal(t, out, again)

	// the copy is independent of the input
	again[0].V = -1
	assert.Equal(t, 1.0, out[0].V)
}

func TestExtend_InsufficientData(t *testing.T) {
	for _, s := range []Series{nil, yearly(2021, 1.5)} {
		_, err := Extend(s, 10)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientData)
	}
}

func TestExtend_Degenerate(t *testing.T) {
	_, err := Extend(Series{{T: 1, V: 1}, {T: 1, V: 2}}, 1)
	assert.ErrorIs(t, err, ErrDegenerateSeries)

	_, err = Extend(Series{{T: 2, V: 1}, {T: 1, V: 2}}, 1)
	assert.ErrorIs(t, err, ErrDegenerateSeries)
}

func TestExtend_NegativeHorizon(t *testing.T) {
	_, err := Extend(yearly(2000, 1, 2), -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "horizon")
}

func TestTail(t *testing.T) {
	s := yearly(2000, 1, 2, 3, 4)

	assert.Equal(t, s[2:], s.Tail(2))
	assert.Equal(t, s, s.Tail(50))
	assert.Empty(t, s.Tail(0))
}

func TestPredicted_NoneWhenHistoryOnly(t *testing.T) {
	assert.Empty(t, yearly(2000, 1, 2).Predicted())
}
