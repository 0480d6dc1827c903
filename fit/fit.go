// Package fit produces trend models over a series indexed 0..n-1. A model is
// immutable once fit and evaluates at any real index including extrapolated
// indexes beyond the training range.
package fit

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aouyang1/go-trend/models"
	"github.com/aouyang1/go-trend/smooth"
	"github.com/aouyang1/go-trend/stats"
	"github.com/aouyang1/go-trend/timeseries"
	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/mat"
)

// Kind tags the trend model variant.
type Kind string

const (
	KindConstant   Kind = "constant"
	KindLinear     Kind = "linear"
	KindPolynomial Kind = "polynomial"
	KindLoess      Kind = "loess"
)

// Model is a fitted trend mapping a numeric index to a predicted value.
// Parametric kinds store polynomial coefficients in ascending degree order.
// The loess kind stores the training series and re-runs the local regression
// on evaluation.
type Model struct {
	kind Kind
	coef []float64

	bandwidth   float64
	localDegree int
	y           []float64
}

// Poly fits a least squares polynomial of the input degree against the index
// 0..n-1 using QR factorization. Degree 0 reduces to the series mean and
// degree 1 to a straight line. Missing (NaN) observations are skipped.
func Poly(y []float64, degree int) (*Model, error) {
	if degree < 0 {
		return nil, fmt.Errorf("degree %d must be non-negative, %w", degree, timeseries.ErrInvalidParameter)
	}

	idx, val := observed(y)
	if len(val) <= degree {
		return nil, fmt.Errorf("%d observations cannot fit a degree %d polynomial, %w",
			len(val), degree, timeseries.ErrInsufficientData)
	}

	if degree == 0 {
		var sum float64
		for _, v := range val {
			sum += v
		}
		return &Model{
			kind: KindConstant,
			coef: []float64{sum / float64(len(val))},
		}, nil
	}

	reg, err := models.NewOLSRegression(nil)
	if err != nil {
		return nil, err
	}
	if err := reg.Fit(vandermonde(idx, degree), target(val)); err != nil {
		if errors.Is(err, models.ErrNearSingular) {
			return nil, fmt.Errorf("degree %d fit over %d observations, %w",
				degree, len(val), timeseries.ErrNumericalInstability)
		}
		return nil, err
	}

	return newPolyModel(reg.Intercept(), reg.Coef()), nil
}

// PolyRegularized fits a polynomial with an L1 penalty using coordinate
// descent, trading bias for stability at higher degrees. lambda 0 converges
// to the ordinary least squares fit.
func PolyRegularized(y []float64, degree int, lambda float64) (*Model, error) {
	if degree < 1 {
		return nil, fmt.Errorf("degree %d must be at least 1, %w", degree, timeseries.ErrInvalidParameter)
	}
	if lambda < 0 {
		return nil, fmt.Errorf("lambda %f must be non-negative, %w", lambda, timeseries.ErrInvalidParameter)
	}

	idx, val := observed(y)
	if len(val) <= degree {
		return nil, fmt.Errorf("%d observations cannot fit a degree %d polynomial, %w",
			len(val), degree, timeseries.ErrInsufficientData)
	}

	opt := models.NewDefaultLassoOptions()
	opt.Lambda = lambda
	reg, err := models.NewLassoRegression(opt)
	if err != nil {
		return nil, err
	}
	if err := reg.Fit(vandermonde(idx, degree), target(val)); err != nil {
		return nil, err
	}

	return newPolyModel(reg.Intercept(), reg.Coef()), nil
}

// Loess captures the series for locally weighted evaluation. The bandwidth is
// the fraction of the series forming each local neighborhood and localDegree
// is the degree of each local polynomial, 1 or 2.
func Loess(y []float64, bandwidth float64, localDegree int) (*Model, error) {
	// validate eagerly so a bad bandwidth fails at fit time rather than on
	// the first evaluation
	if _, err := smooth.LoessAt(y, bandwidth, localDegree, 0); err != nil {
		return nil, err
	}

	yCopy := make([]float64, len(y))
	copy(yCopy, y)
	return &Model{
		kind:        KindLoess,
		bandwidth:   bandwidth,
		localDegree: localDegree,
		y:           yCopy,
	}, nil
}

func newPolyModel(intercept float64, coef []float64) *Model {
	all := append([]float64{intercept}, coef...)
	kind := KindPolynomial
	if len(all) == 2 {
		kind = KindLinear
	}
	return &Model{
		kind: kind,
		coef: all,
	}
}

// Kind returns the model variant tag.
func (m *Model) Kind() Kind {
	return m.kind
}

// Coef returns the polynomial coefficients in ascending degree order. Loess
// models have none.
func (m *Model) Coef() []float64 {
	c := make([]float64, len(m.coef))
	copy(c, m.coef)
	return c
}

// Evaluate returns the trend value at any real index. Parametric kinds
// extrapolate; the loess kind extends the boundary local fits.
func (m *Model) Evaluate(idx float64) float64 {
	switch m.kind {
	case KindConstant, KindLinear, KindPolynomial:
		val := 0.0
		for i := len(m.coef) - 1; i >= 0; i-- {
			val = val*idx + m.coef[i]
		}
		return val
	case KindLoess:
		val, err := smooth.LoessAt(m.y, m.bandwidth, m.localDegree, idx)
		if err != nil {
			return math.NaN()
		}
		return val
	}
	return math.NaN()
}

// FittedValues evaluates the model at indexes 0..n-1.
func (m *Model) FittedValues(n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = m.Evaluate(float64(i))
	}
	return out
}

// Score computes the coefficient of determination of the model against the
// observed series.
func (m *Model) Score(y []float64) (float64, error) {
	return stats.RSquared(m.FittedValues(len(y)), y)
}

// Eq returns a string representation of the fit model represented as
// y ~ b + m1x + m2x^2 ...
func (m *Model) Eq() string {
	if m.kind == KindLoess {
		return fmt.Sprintf("y ~ loess(f=%.3f, degree=%d)", m.bandwidth, m.localDegree)
	}
	var sb strings.Builder
	sb.WriteString("y ~ ")
	for i, c := range m.coef {
		if i > 0 {
			sb.WriteString(" + ")
		}
		switch i {
		case 0:
			fmt.Fprintf(&sb, "%.5f", c)
		case 1:
			fmt.Fprintf(&sb, "%.5fx", c)
		default:
			fmt.Fprintf(&sb, "%.5fx^%d", c, i)
		}
	}
	return sb.String()
}

type modelJSON struct {
	Kind        Kind      `json:"kind"`
	Coef        []float64 `json:"coefficients,omitempty"`
	Bandwidth   float64   `json:"bandwidth,omitempty"`
	LocalDegree int       `json:"local_degree,omitempty"`
	Y           []float64 `json:"training_values,omitempty"`
}

func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(modelJSON{
		Kind:        m.kind,
		Coef:        m.coef,
		Bandwidth:   m.bandwidth,
		LocalDegree: m.localDegree,
		Y:           m.y,
	})
}

func (m *Model) UnmarshalJSON(data []byte) error {
	var mj modelJSON
	if err := json.Unmarshal(data, &mj); err != nil {
		return err
	}
	m.kind = mj.Kind
	m.coef = mj.Coef
	m.bandwidth = mj.Bandwidth
	m.localDegree = mj.LocalDegree
	m.y = mj.Y
	return nil
}

func observed(y []float64) ([]float64, []float64) {
	idx := make([]float64, 0, len(y))
	val := make([]float64, 0, len(y))
	for i, v := range y {
		if math.IsNaN(v) {
			continue
		}
		idx = append(idx, float64(i))
		val = append(val, v)
	}
	return idx, val
}

func vandermonde(idx []float64, degree int) mat.Matrix {
	m := len(idx)
	x := mat.NewDense(m, degree, nil)
	for i := 0; i < m; i++ {
		v := idx[i]
		for j := 0; j < degree; j++ {
			x.Set(i, j, v)
			v *= idx[i]
		}
	}
	return x
}

func target(val []float64) mat.Matrix {
	return mat.NewDense(len(val), 1, val)
}
