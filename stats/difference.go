package stats

import (
	"fmt"

	"github.com/aouyang1/go-trend/timeseries"
)

// Difference applies first order differencing, x[t]-x[t-1], recursively order
// times. The output has length n-order. Detrends polynomial structure of the
// matching degree.
func Difference(y []float64, order int) ([]float64, error) {
	if order < 1 {
		return nil, fmt.Errorf("differencing order %d must be at least 1, %w", order, timeseries.ErrInvalidParameter)
	}
	if order >= len(y) {
		return nil, fmt.Errorf("differencing order %d must be less than series length %d, %w",
			order, len(y), timeseries.ErrInvalidParameter)
	}

	curr := make([]float64, len(y))
	copy(curr, y)
	for k := 0; k < order; k++ {
		next := make([]float64, len(curr)-1)
		for i := 1; i < len(curr); i++ {
			next[i-1] = curr[i] - curr[i-1]
		}
		curr = next
	}
	return curr, nil
}

// SeasonalDifference subtracts the observation one full period back,
// x[t]-x[t-period], removing a stable seasonal pattern. The output has length
// n-period.
func SeasonalDifference(y []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("seasonal period %d must be at least 1, %w", period, timeseries.ErrInvalidParameter)
	}
	if period >= len(y) {
		return nil, fmt.Errorf("seasonal period %d must be less than series length %d, %w",
			period, len(y), timeseries.ErrInvalidParameter)
	}

	out := make([]float64, len(y)-period)
	for i := period; i < len(y); i++ {
		out[i-period] = y[i] - y[i-period]
	}
	return out, nil
}
