package trend

import (
	"time"

	"github.com/aouyang1/go-trend/changepoint"
	"github.com/aouyang1/go-trend/stats"
)

// Results tracks the component series and statistics from a single analyzer
// fit. All component slices align with T.
type Results struct {
	T        []time.Time `json:"time"`
	Observed []float64   `json:"observed"`
	Fit      []float64   `json:"fit"`
	Trend    []float64   `json:"trend"`
	Seasonal []float64   `json:"seasonal,omitempty"`
	Residual []float64   `json:"residual"`

	Changepoints []changepoint.Changepoint `json:"changepoints,omitempty"`
	OutlierIdxs  []int                     `json:"outlier_indexes,omitempty"`

	TrendTest *stats.MannKendallResult `json:"trend_test"`
	Scores    *stats.Scores            `json:"scores"`
}
