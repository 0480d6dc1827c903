// Package decompose splits a series into trend, seasonal and residual
// components using classical seasonal decomposition.
package decompose

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-trend/smooth"
	"github.com/aouyang1/go-trend/timeseries"
)

// Kind selects how the components combine back into the observed series.
type Kind string

const (
	// Additive models observed = trend + seasonal + residual.
	Additive Kind = "additive"
	// Multiplicative models observed = trend * seasonal * residual.
	Multiplicative Kind = "multiplicative"
)

// Result holds the three aligned component series, each the same length as
// the observed input.
type Result struct {
	Observed timeseries.Series `json:"observed"`
	Trend    timeseries.Series `json:"trend"`
	Seasonal timeseries.Series `json:"seasonal"`
	Residual timeseries.Series `json:"residual"`
	Period   int               `json:"period"`
	Kind     Kind              `json:"kind"`
}

// Decompose performs classical seasonal decomposition with the input period.
// The trend is a centered moving average with the two edges filled by linear
// extrapolation so every index carries a defined trend. Seasonal indices are
// the per phase averages of the detrended series, centered to sum to zero
// (additive) or average to one (multiplicative) over a full period.
func Decompose(y []float64, period int, kind Kind) (*Result, error) {
	n := len(y)
	switch kind {
	case Additive, Multiplicative:
	default:
		return nil, fmt.Errorf("unknown decomposition kind %q, %w", kind, timeseries.ErrInvalidParameter)
	}
	if period < 2 {
		return nil, fmt.Errorf("period %d must be at least 2, %w", period, timeseries.ErrInvalidParameter)
	}
	if n < 2*period {
		return nil, fmt.Errorf("decomposition with period %d needs at least %d observations, got %d, %w",
			period, 2*period, n, timeseries.ErrInsufficientData)
	}

	trend, err := smooth.CenteredMovingAverage(y, period)
	if err != nil {
		return nil, fmt.Errorf("unable to compute trend cycle, %w", err)
	}
	extrapolateEdges(trend)

	detrended := make([]float64, n)
	for i := 0; i < n; i++ {
		if kind == Multiplicative {
			if trend[i] == 0 {
				detrended[i] = math.NaN()
				continue
			}
			detrended[i] = y[i] / trend[i]
			continue
		}
		detrended[i] = y[i] - trend[i]
	}

	seasonalIdx := seasonalIndices(detrended, period, kind)

	seasonal := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = seasonalIdx[i%period]
	}

	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		if kind == Multiplicative {
			if trend[i] == 0 || seasonal[i] == 0 {
				residual[i] = math.NaN()
				continue
			}
			residual[i] = y[i] / (trend[i] * seasonal[i])
			continue
		}
		residual[i] = y[i] - trend[i] - seasonal[i]
	}

	observed := make([]float64, n)
	copy(observed, y)

	return &Result{
		Observed: observed,
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
		Period:   period,
		Kind:     kind,
	}, nil
}

// Reconstruct recombines the components. The output matches the observed
// series within floating point tolerance wherever all components are defined.
func (r *Result) Reconstruct() timeseries.Series {
	n := len(r.Observed)
	out := make(timeseries.Series, n)
	for i := 0; i < n; i++ {
		if r.Kind == Multiplicative {
			out[i] = r.Trend[i] * r.Seasonal[i] * r.Residual[i]
			continue
		}
		out[i] = r.Trend[i] + r.Seasonal[i] + r.Residual[i]
	}
	return out
}

// Detrended returns the observed series with the trend component removed.
func (r *Result) Detrended() timeseries.Series {
	n := len(r.Observed)
	out := make(timeseries.Series, n)
	for i := 0; i < n; i++ {
		if r.Kind == Multiplicative {
			if r.Trend[i] == 0 {
				out[i] = math.NaN()
				continue
			}
			out[i] = r.Observed[i] / r.Trend[i]
			continue
		}
		out[i] = r.Observed[i] - r.Trend[i]
	}
	return out
}

// Deseasonalized returns the observed series with the seasonal component
// removed.
func (r *Result) Deseasonalized() timeseries.Series {
	n := len(r.Observed)
	out := make(timeseries.Series, n)
	for i := 0; i < n; i++ {
		if r.Kind == Multiplicative {
			if r.Seasonal[i] == 0 {
				out[i] = math.NaN()
				continue
			}
			out[i] = r.Observed[i] / r.Seasonal[i]
			continue
		}
		out[i] = r.Observed[i] - r.Seasonal[i]
	}
	return out
}

func seasonalIndices(detrended []float64, period int, kind Kind) []float64 {
	idx := make([]float64, period)
	counts := make([]float64, period)
	for i, v := range detrended {
		if math.IsNaN(v) {
			continue
		}
		idx[i%period] += v
		counts[i%period]++
	}
	for i := 0; i < period; i++ {
		if counts[i] > 0 {
			idx[i] /= counts[i]
		}
	}

	var sum float64
	for _, v := range idx {
		sum += v
	}
	mean := sum / float64(period)

	if kind == Multiplicative {
		if mean != 0 {
			for i := range idx {
				idx[i] /= mean
			}
		}
		return idx
	}
	for i := range idx {
		idx[i] -= mean
	}
	return idx
}

// extrapolateEdges fills the NaN edges left by the centered moving average by
// extending the line through the first and last two defined trend values.
func extrapolateEdges(trend []float64) {
	n := len(trend)

	first := -1
	for i := 0; i < n; i++ {
		if !math.IsNaN(trend[i]) {
			first = i
			break
		}
	}
	if first < 0 {
		return
	}
	last := first
	for i := n - 1; i >= 0; i-- {
		if !math.IsNaN(trend[i]) {
			last = i
			break
		}
	}

	startSlope := 0.0
	if first+1 <= last && !math.IsNaN(trend[first+1]) {
		startSlope = trend[first+1] - trend[first]
	}
	for i := first - 1; i >= 0; i-- {
		trend[i] = trend[i+1] - startSlope
	}

	endSlope := 0.0
	if last-1 >= first && !math.IsNaN(trend[last-1]) {
		endSlope = trend[last] - trend[last-1]
	}
	for i := last + 1; i < n; i++ {
		trend[i] = trend[i-1] + endSlope
	}
}
