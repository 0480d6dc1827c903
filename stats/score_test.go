package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMSE(t *testing.T) {
	testData := map[string]struct {
		predicted []float64
		actual    []float64
		err       error
		expected  float64
	}{
		"perfect": {
			[]float64{1.0, 2.0, 3.0},
			[]float64{1.0, 2.0, 3.0},
			nil,
			0.0,
		},
		"off by one": {
			[]float64{2.0, 3.0, 4.0},
			[]float64{1.0, 2.0, 3.0},
			nil,
			1.0,
		},
		"skips missing": {
			[]float64{2.0, 3.0, 4.0},
			[]float64{1.0, math.NaN(), 3.0},
			nil,
			2.0 / 3.0,
		},
		"length mismatch": {
			[]float64{1.0},
			[]float64{1.0, 2.0},
			ErrResLenMismatch,
			0.0,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := MSE(td.predicted, td.actual)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDelta(t, td.expected, res, 1e-12)
		})
	}
}

func TestMAPE(t *testing.T) {
	testData := map[string]struct {
		predicted []float64
		actual    []float64
		err       error
		expected  float64
	}{
		"perfect": {
			[]float64{1.0, 2.0, 4.0},
			[]float64{1.0, 2.0, 4.0},
			nil,
			0.0,
		},
		"half off": {
			[]float64{1.0, 1.0},
			[]float64{2.0, 2.0},
			nil,
			0.5,
		},
		"skips zero actual": {
			[]float64{1.0, 1.0},
			[]float64{0.0, 2.0},
			nil,
			0.25,
		},
		"length mismatch": {
			[]float64{1.0},
			[]float64{1.0, 2.0},
			ErrResLenMismatch,
			0.0,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := MAPE(td.predicted, td.actual)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDelta(t, td.expected, res, 1e-12)
		})
	}
}

func TestRSquared(t *testing.T) {
	testData := map[string]struct {
		predicted []float64
		actual    []float64
		err       error
		expected  float64
	}{
		"perfect": {
			[]float64{1.0, 2.0, 3.0, 4.0},
			[]float64{1.0, 2.0, 3.0, 4.0},
			nil,
			1.0,
		},
		"constant actual": {
			[]float64{4.0, 5.0, 6.0},
			[]float64{5.0, 5.0, 5.0},
			nil,
			0.0,
		},
		"constant actual exact fit": {
			[]float64{5.0, 5.0, 5.0},
			[]float64{5.0, 5.0, 5.0},
			nil,
			0.0,
		},
		"constant predicted at mean": {
			[]float64{2.5, 2.5, 2.5, 2.5},
			[]float64{1.0, 2.0, 3.0, 4.0},
			nil,
			0.0,
		},
		"length mismatch": {
			[]float64{1.0},
			[]float64{1.0, 2.0},
			ErrResLenMismatch,
			0.0,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := RSquared(td.predicted, td.actual)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDelta(t, td.expected, res, 1e-12)
		})
	}
}

func TestNewScores(t *testing.T) {
	predicted := []float64{1.0, 2.0, 3.0, 4.0}
	actual := []float64{1.0, 2.0, 3.0, 4.0}

	scores, err := NewScores(predicted, actual)
	require.Nil(t, err)
	assert.Equal(t, 0.0, scores.MSE)
	assert.Equal(t, 0.0, scores.MAPE)
	assert.InDelta(t, 1.0, scores.R2, 1e-12)

	_, err = NewScores([]float64{1.0}, actual)
	require.ErrorIs(t, err, ErrResLenMismatch)
}
