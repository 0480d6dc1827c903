// Package trend analyzes a univariate time series for long term directional
// movement. A single fit pass decomposes out seasonality, fits a trend model,
// tests the trend strength, and flags change points and residual outliers.
package trend

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/aouyang1/go-trend/changepoint"
	"github.com/aouyang1/go-trend/decompose"
	"github.com/aouyang1/go-trend/fit"
	"github.com/aouyang1/go-trend/stats"
	"github.com/aouyang1/go-trend/timeseries"
	"github.com/go-echarts/go-echarts/v2/components"
)

var (
	ErrUntrainedAnalyzer   = errors.New("analyzer has not been fit")
	ErrNoOptionsInModel    = errors.New("no options set in model")
	ErrNoTrendModelInModel = errors.New("no trend model set in model")
	ErrCannotInferInterval = errors.New("cannot infer interval from training data time")
)

// Analyzer fits trend structure over a time series and exposes the fitted
// components, statistics, and extrapolation.
type Analyzer struct {
	opt *Options

	trainingData  *timeseries.TimeSeries
	decomposition *decompose.Result
	trendModel    *fit.Model
	fitResults    *Results
}

// New creates a new instance of an Analyzer using the provided options. If no
// options are provided a default is used.
func New(opt *Options) (*Analyzer, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("unable to validate analyzer options, %w", err)
	}
	return &Analyzer{
		opt: opt,
	}, nil
}

// NewFromModel creates a new instance of an Analyzer from a pre-existing
// model generated from a previous analyzer call to Model(). The restored
// analyzer evaluates the trend without refitting.
func NewFromModel(model Model) (*Analyzer, error) {
	if model.Options == nil {
		return nil, ErrNoOptionsInModel
	}
	if model.TrendModel == nil {
		return nil, ErrNoTrendModelInModel
	}
	opt, err := model.Options.Validate()
	if err != nil {
		return nil, fmt.Errorf("unable to validate model options, %w", err)
	}
	return &Analyzer{
		opt:        opt,
		trendModel: model.TrendModel,
	}, nil
}

// Fit analyzes the input time series. The timestamps must be strictly
// increasing and NaN observations mark missing values.
func (a *Analyzer) Fit(t []time.Time, y []float64) error {
	ts, err := timeseries.New(t, y)
	if err != nil {
		return fmt.Errorf("unable to create training dataset, %w", err)
	}
	a.trainingData = ts
	n := ts.Len()

	working := timeseries.Series(ts.Y).Copy()
	if a.opt.Period >= 2 {
		dcmp, err := decompose.Decompose(ts.Y, a.opt.Period, a.opt.DecompositionKind)
		if err != nil {
			return fmt.Errorf("unable to decompose series with period %d, %w", a.opt.Period, err)
		}
		a.decomposition = dcmp
		working = dcmp.Deseasonalized()
	}

	model, err := a.fitTrendModel(working)
	if err != nil {
		return fmt.Errorf("unable to fit trend model, %w", err)
	}
	a.trendModel = model

	trendLine := model.FittedValues(n)
	fitLine, residual := a.recombine(ts.Y, trendLine)

	trendTest, err := stats.MannKendall(working)
	if err != nil {
		return fmt.Errorf("unable to run trend test, %w", err)
	}

	scores, err := stats.NewScores(fitLine, ts.Y)
	if err != nil {
		return fmt.Errorf("unable to compute fit scores, %w", err)
	}

	res := &Results{
		T:         ts.T,
		Observed:  ts.Y,
		Fit:       fitLine,
		Trend:     trendLine,
		Residual:  residual,
		TrendTest: trendTest,
		Scores:    scores,
	}
	if a.decomposition != nil {
		res.Seasonal = a.decomposition.Seasonal
	}

	res.Changepoints, err = a.detectChangepoints(ts.T, residual)
	if err != nil {
		return fmt.Errorf("unable to detect changepoints, %w", err)
	}

	if a.opt.Outlier != nil {
		res.OutlierIdxs = stats.DetectOutliers(
			residual,
			a.opt.Outlier.LowerPercentile,
			a.opt.Outlier.UpperPercentile,
			a.opt.Outlier.TukeyFactor,
		)
	}

	a.fitResults = res
	return nil
}

func (a *Analyzer) fitTrendModel(working []float64) (*fit.Model, error) {
	if a.opt.Method == MethodLoess {
		return fit.Loess(working, a.opt.Bandwidth, a.opt.LocalDegree)
	}
	if a.opt.Regularization > 0 && a.opt.Degree >= 1 {
		return fit.PolyRegularized(working, a.opt.Degree, a.opt.Regularization)
	}
	return fit.Poly(working, a.opt.Degree)
}

// recombine folds the seasonal component back onto the trend line to produce
// the full fit and its residual against the observed series.
func (a *Analyzer) recombine(observed, trendLine []float64) ([]float64, []float64) {
	n := len(observed)
	fitLine := make([]float64, n)
	residual := make([]float64, n)
	multiplicative := a.decomposition != nil && a.decomposition.Kind == decompose.Multiplicative

	for i := 0; i < n; i++ {
		fitLine[i] = trendLine[i]
		if a.decomposition != nil {
			if multiplicative {
				fitLine[i] *= a.decomposition.Seasonal[i]
			} else {
				fitLine[i] += a.decomposition.Seasonal[i]
			}
		}
		if multiplicative {
			if fitLine[i] == 0 {
				residual[i] = math.NaN()
				continue
			}
			residual[i] = observed[i] / fitLine[i]
			continue
		}
		residual[i] = observed[i] - fitLine[i]
	}
	return fitLine, residual
}

// detectChangepoints segments the trend free residual. Detection needs a
// complete residual path so it is skipped when any observation is missing.
func (a *Analyzer) detectChangepoints(t []time.Time, residual []float64) ([]changepoint.Changepoint, error) {
	if a.opt.Changepoint == nil || !a.opt.Changepoint.Enabled {
		return nil, nil
	}
	for _, v := range residual {
		if math.IsNaN(v) {
			return nil, nil
		}
	}

	var idxs []int
	var err error
	if a.opt.Changepoint.Penalty > 0 {
		idxs, err = changepoint.DetectPenalty(residual, a.opt.Changepoint.Penalty)
	} else {
		idxs, err = changepoint.DetectN(residual, a.opt.Changepoint.MaxChangepoints)
	}
	if err != nil {
		return nil, err
	}

	chpts := make([]changepoint.Changepoint, 0, len(idxs))
	for i, idx := range idxs {
		chpts = append(chpts, changepoint.New(fmt.Sprintf("chpnt_%02d", i), idx, t[idx]))
	}
	return chpts, nil
}

// Evaluate returns the fitted trend value at any real index including
// extrapolated indexes beyond the training range.
func (a *Analyzer) Evaluate(idx float64) (float64, error) {
	if a.trendModel == nil {
		return 0, ErrUntrainedAnalyzer
	}
	return a.trendModel.Evaluate(idx), nil
}

// Extrapolate extends the fit horizon steps beyond the end of the training
// series, tiling the seasonal component forward when one was fit.
func (a *Analyzer) Extrapolate(horizon int) ([]float64, error) {
	if a.fitResults == nil {
		return nil, ErrUntrainedAnalyzer
	}
	n := len(a.fitResults.Observed)
	multiplicative := a.decomposition != nil && a.decomposition.Kind == decompose.Multiplicative

	out := make([]float64, horizon)
	for i := 0; i < horizon; i++ {
		val := a.trendModel.Evaluate(float64(n + i))
		if a.decomposition != nil {
			seasonal := a.decomposition.Seasonal[(n+i)%a.opt.Period]
			if multiplicative {
				val *= seasonal
			} else {
				val += seasonal
			}
		}
		out[i] = val
	}
	return out, nil
}

// TrendComponent returns the fitted trend line over the training range.
func (a *Analyzer) TrendComponent() []float64 {
	if a.fitResults == nil {
		return nil
	}
	return a.fitResults.Trend
}

// SeasonalityComponent returns the seasonal component or nil when the fit ran
// without decomposition.
func (a *Analyzer) SeasonalityComponent() []float64 {
	if a.fitResults == nil {
		return nil
	}
	return a.fitResults.Seasonal
}

// Residuals returns the difference between the full fit and the training data
func (a *Analyzer) Residuals() []float64 {
	if a.fitResults == nil {
		return nil
	}
	return a.fitResults.Residual
}

// Decomposition returns the seasonal decomposition from the fit, or nil when
// no period was configured.
func (a *Analyzer) Decomposition() *decompose.Result {
	return a.decomposition
}

// TrendModel returns the fitted trend model.
func (a *Analyzer) TrendModel() *fit.Model {
	return a.trendModel
}

// TrendTest returns the Mann-Kendall trend test result from the fit.
func (a *Analyzer) TrendTest() *stats.MannKendallResult {
	if a.fitResults == nil {
		return nil
	}
	return a.fitResults.TrendTest
}

// Changepoints returns the detected change points from the fit.
func (a *Analyzer) Changepoints() []changepoint.Changepoint {
	if a.fitResults == nil {
		return nil
	}
	return a.fitResults.Changepoints
}

// Scores returns the fit scores measuring the full fit against the observed
// series.
func (a *Analyzer) Scores() *stats.Scores {
	if a.fitResults == nil {
		return nil
	}
	return a.fitResults.Scores
}

// TrainingData returns the training data used to fit the current analyzer
func (a *Analyzer) TrainingData() *timeseries.TimeSeries {
	return a.trainingData
}

// FitResults returns the component series and statistics from the fit
func (a *Analyzer) FitResults() *Results {
	return a.fitResults
}

// ModelEq returns a string representation of the fit trend model represented
// as y ~ b + m1x + m2x^2 ...
func (a *Analyzer) ModelEq() (string, error) {
	if a.trendModel == nil {
		return "", ErrUntrainedAnalyzer
	}
	return a.trendModel.Eq(), nil
}

// Model generates a serializable representation of the fit options and trend
// model. This can be used to initialize a new Analyzer for immediate
// evaluations skipping the training step.
func (a *Analyzer) Model() (Model, error) {
	if a.trendModel == nil {
		return Model{}, ErrUntrainedAnalyzer
	}
	return Model{
		Options:    a.opt,
		TrendModel: a.trendModel,
	}, nil
}

// PlotOpts sets the horizon to extrapolate out. By default will use 10% of
// the training size assuming even intervals between points where the first
// two points are used to infer the horizon interval.
type PlotOpts struct {
	HorizonCnt      int
	HorizonInterval time.Duration
}

// PlotFit uses the Apache Echarts library to generate an html page showing
// the resulting fit, components, and fit residual.
func (a *Analyzer) PlotFit(w io.Writer, opt *PlotOpts) error {
	if a.fitResults == nil {
		return ErrUntrainedAnalyzer
	}
	td := a.trainingData
	if len(td.T) < 2 {
		return ErrCannotInferInterval
	}

	horizonCnt := len(td.T) / 10
	horizonInterval := td.T[1].Sub(td.T[0])
	if opt != nil {
		horizonCnt = opt.HorizonCnt
		horizonInterval = opt.HorizonInterval
	}
	if horizonCnt < 1 {
		horizonCnt = 1
	}

	lastTime := td.T[len(td.T)-1]
	t := make([]time.Time, len(td.T), len(td.T)+horizonCnt)
	copy(t, td.T)
	zpad := make([]float64, 0, horizonCnt)
	for i := 0; i < horizonCnt; i++ {
		t = append(t, lastTime.Add(time.Duration(i+1)*horizonInterval))
		zpad = append(zpad, math.NaN())
	}

	horizonFit, err := a.Extrapolate(horizonCnt)
	if err != nil {
		return fmt.Errorf("unable to extrapolate fit, %w", err)
	}

	fitLine := append(append([]float64{}, a.fitResults.Fit...), horizonFit...)
	observed := append(append([]float64{}, a.fitResults.Observed...), zpad...)
	residuals := append(append([]float64{}, a.fitResults.Residual...), zpad...)

	componentSeries := [][]float64{append(append([]float64{}, a.fitResults.Trend...), zpad...)}
	componentNames := []string{"Trend"}
	if a.fitResults.Seasonal != nil {
		componentSeries = append(componentSeries, append(append([]float64{}, a.fitResults.Seasonal...), zpad...))
		componentNames = append(componentNames, "Seasonality")
	}

	page := components.NewPage()
	page.AddCharts(
		LineFit(t, observed, fitLine, a.fitResults.Changepoints),
		LineTSeries("Trend Components", componentNames, t, componentSeries),
		LineTSeries("Fit Residual", []string{"Residual"}, t, [][]float64{residuals}),
	)
	return page.Render(w)
}
