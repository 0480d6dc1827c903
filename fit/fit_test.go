package fit

import (
	"math"
	"testing"

	"github.com/aouyang1/go-trend/timeseries"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateLine(n int, bias, slope float64) []float64 {
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = bias + slope*float64(i)
	}
	return y
}

func TestPolyDegreeZero(t *testing.T) {
	y := []float64{1.0, 2.0, 3.0, 4.0}

	m, err := Poly(y, 0)
	require.Nil(t, err)

	assert.Equal(t, KindConstant, m.Kind())
	assert.InDeltaSlice(t, []float64{2.5}, m.Coef(), 1e-12)
	assert.InDelta(t, 2.5, m.Evaluate(100.0), 1e-12)
}

func TestPolyDegreeOneRecoversLine(t *testing.T) {
	// y = 3.2 + 0.7*i must recover both coefficients with r2 of 1
	y := generateLine(50, 3.2, 0.7)

	m, err := Poly(y, 1)
	require.Nil(t, err)

	assert.Equal(t, KindLinear, m.Kind())
	assert.InDeltaSlice(t, []float64{3.2, 0.7}, m.Coef(), 1e-8)

	r2, err := m.Score(y)
	require.Nil(t, err)
	assert.InDelta(t, 1.0, r2, 1e-8)
}

func TestPolyExtrapolates(t *testing.T) {
	y := generateLine(20, 1.0, 2.0)

	m, err := Poly(y, 1)
	require.Nil(t, err)

	assert.InDelta(t, 1.0+2.0*100.0, m.Evaluate(100.0), 1e-6)
	assert.InDelta(t, 1.0-2.0*10.0, m.Evaluate(-10.0), 1e-6)
}

func TestPolyQuadratic(t *testing.T) {
	n := 30
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i)
		y[i] = 2.0 + 0.5*x - 0.1*x*x
	}

	m, err := Poly(y, 2)
	require.Nil(t, err)

	assert.Equal(t, KindPolynomial, m.Kind())
	assert.InDeltaSlice(t, []float64{2.0, 0.5, -0.1}, m.Coef(), 1e-6)
}

func TestPolySkipsMissing(t *testing.T) {
	y := generateLine(20, 1.0, 1.0)
	y[3] = math.NaN()
	y[15] = math.NaN()

	m, err := Poly(y, 1)
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{1.0, 1.0}, m.Coef(), 1e-8)
}

func TestPolyErrors(t *testing.T) {
	testData := map[string]struct {
		y      []float64
		degree int
		err    error
	}{
		"negative degree":   {generateLine(10, 0.0, 1.0), -1, timeseries.ErrInvalidParameter},
		"insufficient data": {[]float64{1.0, 2.0}, 2, timeseries.ErrInsufficientData},
		"all missing":       {[]float64{math.NaN(), math.NaN()}, 0, timeseries.ErrInsufficientData},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := Poly(td.y, td.degree)
			require.ErrorIs(t, err, td.err)
		})
	}
}

func TestPolyRegularized(t *testing.T) {
	y := generateLine(30, 2.0, 1.5)

	m, err := PolyRegularized(y, 1, 0.0)
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{2.0, 1.5}, m.Coef(), 5e-2)

	_, err = PolyRegularized(y, 1, -1.0)
	require.ErrorIs(t, err, timeseries.ErrInvalidParameter)
}

func TestLoessModel(t *testing.T) {
	y := generateLine(40, 5.0, 0.25)

	m, err := Loess(y, 0.5, 1)
	require.Nil(t, err)

	assert.Equal(t, KindLoess, m.Kind())
	assert.Empty(t, m.Coef())

	fitted := m.FittedValues(len(y))
	assert.InDeltaSlice(t, y, fitted, 1e-8)

	r2, err := m.Score(y)
	require.Nil(t, err)
	assert.InDelta(t, 1.0, r2, 1e-8)
}

func TestLoessModelSmallBandwidth(t *testing.T) {
	// minimal local windows must still evaluate at every training index
	y := generateLine(10, 1.0, 1.0)

	m, err := Loess(y, 0.3, 1)
	require.Nil(t, err)

	fitted := m.FittedValues(len(y))
	for i, v := range fitted {
		require.False(t, math.IsNaN(v), "NaN at %d", i)
	}
	assert.InDeltaSlice(t, y, fitted, 1e-8)
}

func TestLoessModelBadBandwidth(t *testing.T) {
	_, err := Loess(generateLine(10, 0.0, 1.0), 0.0, 1)
	require.ErrorIs(t, err, timeseries.ErrInvalidParameter)
}

func TestModelJSONRoundTrip(t *testing.T) {
	testData := map[string]struct {
		build func() (*Model, error)
	}{
		"linear": {func() (*Model, error) {
			return Poly(generateLine(20, 1.0, 2.0), 1)
		}},
		"constant": {func() (*Model, error) {
			return Poly(generateLine(20, 7.0, 0.0), 0)
		}},
		"loess": {func() (*Model, error) {
			return Loess(generateLine(20, 1.0, 2.0), 0.5, 1)
		}},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			m, err := td.build()
			require.Nil(t, err)

			data, err := json.Marshal(m)
			require.Nil(t, err)

			var restored Model
			require.Nil(t, json.Unmarshal(data, &restored))

			assert.Equal(t, m.Kind(), restored.Kind())
			for _, idx := range []float64{0.0, 5.5, 19.0, 25.0} {
				assert.InDelta(t, m.Evaluate(idx), restored.Evaluate(idx), 1e-10)
			}
		})
	}
}

func TestModelEq(t *testing.T) {
	m, err := Poly(generateLine(10, 1.0, 2.0), 1)
	require.Nil(t, err)

	eq := m.Eq()
	assert.Contains(t, eq, "y ~ ")
	assert.Contains(t, eq, "x")
}
