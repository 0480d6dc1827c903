package stats

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-trend/timeseries"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultAlpha is the two-sided significance level used to call a trend
// direction.
const DefaultAlpha = 0.05

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendNone       TrendDirection = "none"
)

// MannKendallResult tracks the rank correlation trend test outputs. S is the
// signed count of pairwise later minus earlier comparisons and Tau its
// normalization to [-1, 1].
type MannKendallResult struct {
	S         float64        `json:"s"`
	Tau       float64        `json:"tau"`
	Z         float64        `json:"z"`
	PValue    float64        `json:"p_value"`
	Direction TrendDirection `json:"direction"`
}

// MannKendall runs the Mann-Kendall trend test under the null hypothesis of
// no trend, using the normal approximation with the tie corrected variance
// and a continuity correction on S. Missing (NaN) observations are skipped.
func MannKendall(y []float64) (*MannKendallResult, error) {
	vals := make([]float64, 0, len(y))
	for _, v := range y {
		if math.IsNaN(v) {
			continue
		}
		vals = append(vals, v)
	}
	n := len(vals)
	if n < 2 {
		return nil, fmt.Errorf("trend test needs at least 2 observations, got %d, %w",
			n, timeseries.ErrInsufficientData)
	}

	var s float64
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			switch {
			case vals[j] > vals[i]:
				s++
			case vals[j] < vals[i]:
				s--
			}
		}
	}

	nf := float64(n)
	tau := s / (0.5 * nf * (nf - 1.0))

	// tie groups reduce the variance of S
	tieCounts := make(map[float64]float64)
	for _, v := range vals {
		tieCounts[v]++
	}
	variance := nf * (nf - 1.0) * (2.0*nf + 5.0)
	for _, t := range tieCounts {
		if t > 1 {
			variance -= t * (t - 1.0) * (2.0*t + 5.0)
		}
	}
	variance /= 18.0

	var z float64
	switch {
	case variance <= 0:
		z = 0.0
	case s > 0:
		z = (s - 1.0) / math.Sqrt(variance)
	case s < 0:
		z = (s + 1.0) / math.Sqrt(variance)
	}

	norm := distuv.Normal{Mu: 0.0, Sigma: 1.0}
	pValue := 2.0 * (1.0 - norm.CDF(math.Abs(z)))

	direction := TrendNone
	if pValue < DefaultAlpha {
		if s > 0 {
			direction = TrendIncreasing
		} else if s < 0 {
			direction = TrendDecreasing
		}
	}

	return &MannKendallResult{
		S:         s,
		Tau:       tau,
		Z:         z,
		PValue:    pValue,
		Direction: direction,
	}, nil
}
