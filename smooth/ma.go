// Package smooth provides moving average and local regression smoothers over
// a single series of observations.
package smooth

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-trend/timeseries"
)

// SimpleMovingAverage computes the unweighted mean of the trailing window at
// every index. The output has the same length as the input with the first
// window-1 entries set to NaN. A NaN observation inside the window propagates
// to the window's output.
func SimpleMovingAverage(y []float64, window int) ([]float64, error) {
	if err := validateWindow(len(y), window); err != nil {
		return nil, err
	}

	out := make([]float64, len(y))
	for i := 0; i < window-1; i++ {
		out[i] = math.NaN()
	}
	for i := window - 1; i < len(y); i++ {
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += y[j]
		}
		out[i] = sum / float64(window)
	}
	return out, nil
}

// WeightedMovingAverage computes a trailing moving average with linearly
// increasing weights where the newest observation in the window carries the
// highest weight. The first window-1 entries are NaN.
func WeightedMovingAverage(y []float64, window int) ([]float64, error) {
	if err := validateWindow(len(y), window); err != nil {
		return nil, err
	}

	denom := float64(window) * float64(window+1) / 2.0

	out := make([]float64, len(y))
	for i := 0; i < window-1; i++ {
		out[i] = math.NaN()
	}
	for i := window - 1; i < len(y); i++ {
		var sum float64
		for j := 0; j < window; j++ {
			sum += float64(j+1) * y[i-window+1+j]
		}
		out[i] = sum / denom
	}
	return out, nil
}

// ExponentialMovingAverage computes the recurrence s[t] = alpha*y[t] +
// (1-alpha)*s[t-1] with s[0] = y[0]. Every output entry is defined. The
// smoothing factor must be in (0, 1].
func ExponentialMovingAverage(y []float64, alpha float64) ([]float64, error) {
	if len(y) == 0 {
		return nil, fmt.Errorf("cannot smooth an empty series, %w", timeseries.ErrInsufficientData)
	}
	if alpha <= 0.0 || alpha > 1.0 {
		return nil, fmt.Errorf("smoothing factor %f must be in (0, 1], %w", alpha, timeseries.ErrInvalidParameter)
	}

	out := make([]float64, len(y))
	out[0] = y[0]
	for i := 1; i < len(y); i++ {
		out[i] = alpha*y[i] + (1.0-alpha)*out[i-1]
	}
	return out, nil
}

// CenteredMovingAverage computes a moving average centered on each index for
// estimating the trend cycle of a seasonal series. Even periods use the
// standard 2xMA convention giving half weight to the two window extremes.
// Indexes where the window does not fit are NaN.
func CenteredMovingAverage(y []float64, period int) ([]float64, error) {
	if err := validateWindow(len(y), period); err != nil {
		return nil, err
	}
	if period < 2 {
		return nil, fmt.Errorf("period %d must be at least 2, %w", period, timeseries.ErrInvalidParameter)
	}

	n := len(y)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	half := period / 2
	if period%2 == 0 {
		for i := half; i < n-half; i++ {
			sum := 0.5*y[i-half] + 0.5*y[i+half]
			for j := i - half + 1; j < i+half; j++ {
				sum += y[j]
			}
			out[i] = sum / float64(period)
		}
		return out, nil
	}

	for i := half; i < n-half; i++ {
		var sum float64
		for j := i - half; j <= i+half; j++ {
			sum += y[j]
		}
		out[i] = sum / float64(period)
	}
	return out, nil
}

func validateWindow(n, window int) error {
	if n == 0 {
		return fmt.Errorf("cannot smooth an empty series, %w", timeseries.ErrInsufficientData)
	}
	if window < 1 {
		return fmt.Errorf("window %d must be at least 1, %w", window, timeseries.ErrInvalidParameter)
	}
	if window > n {
		return fmt.Errorf("window %d exceeds series length %d, %w", window, n, timeseries.ErrInvalidParameter)
	}
	return nil
}
