// Package timeseries provides the validated time series input type shared by
// all analysis operations along with the error kinds they report.
package timeseries

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrNoData            = errors.New("no observation data")
	ErrNonMonotonic      = errors.New("time feature is not monotonic")
	ErrSeriesLenMismatch = errors.New("time feature has a different length than observations")
	ErrNonFiniteValue    = errors.New("observation is neither finite nor NaN")

	// Error kinds reported by the analysis operations. Operations wrap these
	// with call specific context so callers can branch with errors.Is.
	ErrInvalidParameter     = errors.New("invalid parameter")
	ErrInsufficientData     = errors.New("insufficient data")
	ErrNumericalInstability = errors.New("numerical instability")
)

// Missing marks an observation with no recorded value. All operations treat
// NaN as the missing marker.
var Missing = math.NaN()

// TimeSeries represents an ordered time series storing a slice of time points
// and observed values. Timestamps are strictly increasing and both slices have
// the same length. Values are finite or NaN for missing observations.
type TimeSeries struct {
	T []time.Time
	Y []float64
}

// New returns an instance of a TimeSeries given a time and value slice. The
// input slices are copied so the series cannot be mutated from the outside.
func New(t []time.Time, y []float64) (*TimeSeries, error) {
	if len(y) == 0 {
		return nil, ErrNoData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrSeriesLenMismatch,
		)
	}

	var lastT time.Time
	for i := 0; i < len(t); i++ {
		currT := t[i]
		if currT.Before(lastT) || currT.Equal(lastT) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMonotonic)
		}
		lastT = currT
	}
	for i := 0; i < len(y); i++ {
		if math.IsInf(y[i], 0) {
			return nil, fmt.Errorf("infinite value at %d, %w", i, ErrNonFiniteValue)
		}
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	ts := &TimeSeries{
		T: tSeries,
		Y: ySeries,
	}

	return ts, nil
}

// Len returns the number of observations in the series.
func (ts *TimeSeries) Len() int {
	return len(ts.Y)
}

func (ts *TimeSeries) Copy() *TimeSeries {
	tSeries := make([]time.Time, len(ts.T))
	ySeries := make([]float64, len(ts.T))
	copy(tSeries, ts.T)
	copy(ySeries, ts.Y)
	return &TimeSeries{
		T: tSeries,
		Y: ySeries,
	}
}

// MissingCount returns the number of NaN observations.
func (ts *TimeSeries) MissingCount() int {
	var cnt int
	for _, v := range ts.Y {
		if math.IsNaN(v) {
			cnt++
		}
	}
	return cnt
}

// Series is a mutable slice of observed values with chainable helpers used to
// compose synthetic datasets and intermediate results.
type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

func (s Series) Sub(src Series) Series {
	floats.Sub(s, src)
	return s
}

func (s Series) Copy() Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}

func (s Series) SetConst(t []time.Time, val float64, start, end time.Time) Series {
	n := len(s)
	for i := 0; i < n; i++ {
		if (t[i].After(start) || t[i].Equal(start)) && t[i].Before(end) {
			s[i] = val
		}
	}
	return s
}

func (s Series) MaskWithWeekend(t []time.Time) Series {
	n := len(s)
	for i := 0; i < n; i++ {
		switch t[i].Weekday() {
		case time.Saturday, time.Sunday:
			continue
		default:
			s[i] = 0.0
		}
	}
	return s
}

func (s Series) MaskWithTimeRange(start, end time.Time, t []time.Time) Series {
	n := len(s)
	for i := 0; i < n; i++ {
		if t[i].Before(start) || t[i].After(end) {
			s[i] = 0.0
		}
	}
	return s
}
