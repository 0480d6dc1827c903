package smooth

import (
	"math"
	"testing"

	"github.com/aouyang1/go-trend/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleMovingAverage(t *testing.T) {
	testData := map[string]struct {
		y        []float64
		window   int
		err      error
		expected []float64
	}{
		"window one is identity": {
			[]float64{1.0, 2.0, 3.0},
			1,
			nil,
			[]float64{1.0, 2.0, 3.0},
		},
		"window three": {
			[]float64{1.0, 2.0, 3.0, 4.0, 5.0},
			3,
			nil,
			[]float64{math.NaN(), math.NaN(), 2.0, 3.0, 4.0},
		},
		"window equals length": {
			[]float64{2.0, 4.0, 6.0},
			3,
			nil,
			[]float64{math.NaN(), math.NaN(), 4.0},
		},
		"window exceeds length": {
			[]float64{1.0, 2.0},
			3,
			timeseries.ErrInvalidParameter,
			nil,
		},
		"zero window": {
			[]float64{1.0, 2.0},
			0,
			timeseries.ErrInvalidParameter,
			nil,
		},
		"empty series": {
			nil,
			1,
			timeseries.ErrInsufficientData,
			nil,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := SimpleMovingAverage(td.y, td.window)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			compareWithNaN(t, td.expected, res)
		})
	}
}

func TestSimpleMovingAverageDefinedCount(t *testing.T) {
	// n-w+1 defined values, each the mean of its trailing slice
	y := []float64{3.0, 1.0, 4.0, 1.0, 5.0, 9.0, 2.0, 6.0}
	window := 4

	res, err := SimpleMovingAverage(y, window)
	require.Nil(t, err)
	require.Len(t, res, len(y))

	var defined int
	for i, v := range res {
		if math.IsNaN(v) {
			continue
		}
		defined++
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += y[j]
		}
		assert.InDelta(t, sum/float64(window), v, 1e-12)
	}
	assert.Equal(t, len(y)-window+1, defined)
}

func TestWeightedMovingAverage(t *testing.T) {
	y := []float64{1.0, 2.0, 3.0, 4.0}

	res, err := WeightedMovingAverage(y, 3)
	require.Nil(t, err)

	assert.True(t, math.IsNaN(res[0]))
	assert.True(t, math.IsNaN(res[1]))
	// (1*1 + 2*2 + 3*3) / 6
	assert.InDelta(t, 14.0/6.0, res[2], 1e-12)
	// (1*2 + 2*3 + 3*4) / 6
	assert.InDelta(t, 20.0/6.0, res[3], 1e-12)
}

func TestWeightedMovingAverageConstSeries(t *testing.T) {
	y := []float64{5.0, 5.0, 5.0, 5.0, 5.0}
	res, err := WeightedMovingAverage(y, 3)
	require.Nil(t, err)
	for i := 2; i < len(res); i++ {
		assert.InDelta(t, 5.0, res[i], 1e-12)
	}
}

func TestExponentialMovingAverage(t *testing.T) {
	testData := map[string]struct {
		y     []float64
		alpha float64
		err   error
	}{
		"valid":          {[]float64{1.0, 2.0, 3.0}, 0.5, nil},
		"alpha one":      {[]float64{1.0, 2.0, 3.0}, 1.0, nil},
		"alpha zero":     {[]float64{1.0, 2.0}, 0.0, timeseries.ErrInvalidParameter},
		"alpha negative": {[]float64{1.0, 2.0}, -0.1, timeseries.ErrInvalidParameter},
		"alpha above":    {[]float64{1.0, 2.0}, 1.1, timeseries.ErrInvalidParameter},
		"empty":          {nil, 0.5, timeseries.ErrInsufficientData},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := ExponentialMovingAverage(td.y, td.alpha)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			require.Len(t, res, len(td.y))

			assert.Equal(t, td.y[0], res[0])
			for i := 1; i < len(td.y); i++ {
				expected := td.alpha*td.y[i] + (1.0-td.alpha)*res[i-1]
				assert.InDelta(t, expected, res[i], 1e-12)
			}
		})
	}
}

func TestExponentialMovingAverageAlphaOneIsIdentity(t *testing.T) {
	y := []float64{3.0, 1.0, 4.0, 1.0, 5.0}
	res, err := ExponentialMovingAverage(y, 1.0)
	require.Nil(t, err)
	assert.Equal(t, y, res)
}

func TestCenteredMovingAverage(t *testing.T) {
	testData := map[string]struct {
		y        []float64
		period   int
		err      error
		expected []float64
	}{
		"odd period": {
			[]float64{1.0, 2.0, 3.0, 4.0, 5.0},
			3,
			nil,
			[]float64{math.NaN(), 2.0, 3.0, 4.0, math.NaN()},
		},
		"even period uses half weights": {
			[]float64{1.0, 2.0, 3.0, 4.0, 5.0, 6.0},
			4,
			nil,
			// (0.5*1 + 2 + 3 + 4 + 0.5*5)/4 = 3.0
			[]float64{math.NaN(), math.NaN(), 3.0, 4.0, math.NaN(), math.NaN()},
		},
		"period below two": {
			[]float64{1.0, 2.0},
			1,
			timeseries.ErrInvalidParameter,
			nil,
		},
		"period exceeds length": {
			[]float64{1.0, 2.0},
			3,
			timeseries.ErrInvalidParameter,
			nil,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := CenteredMovingAverage(td.y, td.period)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			compareWithNaN(t, td.expected, res)
		})
	}
}

func compareWithNaN(t *testing.T, expected, res []float64) {
	require.Equal(t, len(expected), len(res))
	for i := range expected {
		if math.IsNaN(expected[i]) {
			assert.True(t, math.IsNaN(res[i]), "expected NaN at %d, got %f", i, res[i])
			continue
		}
		assert.InDelta(t, expected[i], res[i], 1e-12, "index %d", i)
	}
}
