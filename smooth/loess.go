package smooth

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-trend/timeseries"
	"gonum.org/v1/gonum/mat"
)

const (
	// MinLoessDegree and MaxLoessDegree bound the local polynomial. Degree 1
	// fits a local line and degree 2 a local parabola.
	MinLoessDegree = 1
	MaxLoessDegree = 2
)

// Loess smooths the series with locally weighted regression. For each index
// the ceil(bandwidth*n) nearest neighbors by index distance are fit with a
// weighted polynomial using the tricube kernel and the fit is evaluated at
// that index. Boundary indexes use one-sided neighborhoods of the same size.
// The bandwidth must be in (0, 1].
func Loess(y []float64, bandwidth float64, degree int) ([]float64, error) {
	if err := validateLoess(len(y), bandwidth, degree); err != nil {
		return nil, err
	}

	out := make([]float64, len(y))
	for i := 0; i < len(y); i++ {
		val, err := loessAt(y, bandwidth, degree, float64(i))
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

// LoessAt evaluates the locally weighted regression at an arbitrary real
// index which may fall between observations or beyond either end of the
// series.
func LoessAt(y []float64, bandwidth float64, degree int, x float64) (float64, error) {
	if err := validateLoess(len(y), bandwidth, degree); err != nil {
		return 0, err
	}
	return loessAt(y, bandwidth, degree, x)
}

func validateLoess(n int, bandwidth float64, degree int) error {
	if bandwidth <= 0.0 || bandwidth > 1.0 {
		return fmt.Errorf("bandwidth %f must be in (0, 1], %w", bandwidth, timeseries.ErrInvalidParameter)
	}
	if degree < MinLoessDegree || degree > MaxLoessDegree {
		return fmt.Errorf("local degree %d must be 1 or 2, %w", degree, timeseries.ErrInvalidParameter)
	}
	if n < degree+2 {
		return fmt.Errorf("need at least %d observations for a degree %d local fit, got %d, %w",
			degree+2, degree, n, timeseries.ErrInsufficientData)
	}
	return nil
}

func loessAt(y []float64, bandwidth float64, degree int, x float64) (float64, error) {
	n := len(y)
	k := int(math.Ceil(bandwidth * float64(n)))
	if k < degree+2 {
		k = degree + 2
	}
	if k > n {
		k = n
	}

	// nearest k indexes by distance form a contiguous window centered on x
	// and clamped to the series bounds
	lo := int(math.Round(x)) - (k-1)/2
	if lo < 0 {
		lo = 0
	}
	if lo > n-k {
		lo = n - k
	}

	// the kernel cutoff sits at the nearest neighbor outside the window
	// rather than at the window edge so the farthest in-window points keep
	// positive weight and the local design stays full rank at the smallest
	// window sizes
	cutoff := math.Max(math.Abs(x-float64(lo)), math.Abs(float64(lo+k-1)-x)) + 1.0
	if lo > 0 {
		cutoff = math.Min(cutoff, math.Abs(x-float64(lo-1)))
	}
	if lo+k < n {
		cutoff = math.Min(cutoff, math.Abs(float64(lo+k)-x))
	}

	weights := make([]float64, k)
	for j := 0; j < k; j++ {
		d := math.Abs(float64(lo+j)-x) / cutoff
		if d >= 1.0 {
			weights[j] = 0.0
			continue
		}
		w := 1.0 - d*d*d
		weights[j] = w * w * w
	}

	// weighted least squares on the index offsets from x so the evaluation
	// reduces to the fitted intercept
	design := mat.NewDense(k, degree+1, nil)
	target := mat.NewDense(k, 1, nil)
	for j := 0; j < k; j++ {
		sw := math.Sqrt(weights[j])
		dx := float64(lo+j) - x
		v := sw
		for c := 0; c <= degree; c++ {
			design.Set(j, c, v)
			v *= dx
		}
		target.Set(j, 0, sw*y[lo+j])
	}

	qr := new(mat.QR)
	qr.Factorize(design)

	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, target); err != nil {
		return 0, fmt.Errorf("local fit at %f is ill-conditioned, %w", x, timeseries.ErrNumericalInstability)
	}
	return beta.At(0, 0), nil
}
