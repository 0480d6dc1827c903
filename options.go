package trend

import (
	"errors"

	"github.com/aouyang1/go-trend/decompose"
	"github.com/aouyang1/go-trend/smooth"
)

var (
	ErrUnknownMethod = errors.New("unknown trend fit method")
	ErrNegativeReg   = errors.New("negative regularization")
)

// Method selects the trend model family fit by the analyzer.
type Method string

const (
	MethodPolynomial Method = "polynomial"
	MethodLoess      Method = "loess"
)

const (
	DefaultDegree      = 1
	DefaultBandwidth   = 0.3
	DefaultLocalDegree = smooth.MinLoessDegree
	DefaultMaxChpnts   = 5
)

// ChangepointOptions controls the binary segmentation pass over the fit
// residual. A positive Penalty overrides MaxChangepoints as the stopping
// rule.
type ChangepointOptions struct {
	Enabled         bool    `json:"enabled"`
	MaxChangepoints int     `json:"max_changepoints"`
	Penalty         float64 `json:"penalty"`
}

func NewDefaultChangepointOptions() *ChangepointOptions {
	return &ChangepointOptions{
		Enabled:         true,
		MaxChangepoints: DefaultMaxChpnts,
	}
}

// OutlierOptions controls flagging of residual outliers with a Tukey fence
// around a percentile range.
type OutlierOptions struct {
	LowerPercentile float64 `json:"lower_percentile"`
	UpperPercentile float64 `json:"upper_percentile"`
	TukeyFactor     float64 `json:"tukey_factor"`
}

func NewDefaultOutlierOptions() *OutlierOptions {
	return &OutlierOptions{
		LowerPercentile: 0.1,
		UpperPercentile: 0.9,
		TukeyFactor:     1.0,
	}
}

// Options configures a single analyzer fit.
type Options struct {
	// Method picks the trend model family. Polynomial fits use Degree and
	// optionally Regularization; loess fits use Bandwidth and LocalDegree.
	Method         Method  `json:"method"`
	Degree         int     `json:"degree"`
	Regularization float64 `json:"regularization"`
	Bandwidth      float64 `json:"bandwidth"`
	LocalDegree    int     `json:"local_degree"`

	// Period enables seasonal decomposition before the trend fit when at
	// least 2. Zero analyzes the series as non-seasonal.
	Period            int            `json:"period"`
	DecompositionKind decompose.Kind `json:"decomposition_kind"`

	Changepoint *ChangepointOptions `json:"changepoint_options"`
	Outlier     *OutlierOptions     `json:"outlier_options"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Method:            MethodPolynomial,
		Degree:            DefaultDegree,
		Bandwidth:         DefaultBandwidth,
		LocalDegree:       DefaultLocalDegree,
		DecompositionKind: decompose.Additive,
		Changepoint:       NewDefaultChangepointOptions(),
		Outlier:           NewDefaultOutlierOptions(),
	}
}

// Validate fills zero values with defaults and rejects inconsistent settings.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	switch o.Method {
	case MethodPolynomial, MethodLoess:
	case "":
		o.Method = MethodPolynomial
	default:
		return nil, ErrUnknownMethod
	}
	if o.Regularization < 0 {
		return nil, ErrNegativeReg
	}
	if o.Method == MethodLoess && o.Bandwidth == 0 {
		o.Bandwidth = DefaultBandwidth
	}
	if o.Method == MethodLoess && o.LocalDegree == 0 {
		o.LocalDegree = DefaultLocalDegree
	}
	if o.DecompositionKind == "" {
		o.DecompositionKind = decompose.Additive
	}
	return o, nil
}
