package trend

import (
	"math"
	"time"

	"github.com/aouyang1/go-trend/changepoint"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineTSeries generates an echart multi-line chart for some arbitrary
// time/value combination. Each series in y must have the same length as the
// input time slice.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	lineData := make([][]opts.LineData, len(y))
	for i := 0; i < len(y); i++ {
		lineData[i] = make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			if math.IsNaN(y[i][j]) {
				lineData[i] = append(lineData[i], opts.LineData{})
				continue
			}
			lineData[i] = append(lineData[i], opts.LineData{Value: y[i][j]})
		}
	}

	line = line.SetXAxis(t)
	for i, series := range seriesName {
		line = line.AddSeries(series, lineData[i])
	}

	return line
}

// LineFit generates an echart line chart plotting the observed values against
// the full fit with vertical markers on every detected change point.
func LineFit(t []time.Time, observed, fitLine []float64, chpts []changepoint.Changepoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Trend Fit",
			},
		),
	)

	lineDataObserved := make([]opts.LineData, 0, len(t))
	lineDataFit := make([]opts.LineData, 0, len(t))
	for i := 0; i < len(t); i++ {
		if math.IsNaN(observed[i]) {
			lineDataObserved = append(lineDataObserved, opts.LineData{})
		} else {
			lineDataObserved = append(lineDataObserved, opts.LineData{Value: observed[i]})
		}
		if math.IsNaN(fitLine[i]) {
			lineDataFit = append(lineDataFit, opts.LineData{})
		} else {
			lineDataFit = append(lineDataFit, opts.LineData{Value: fitLine[i]})
		}
	}

	markLines := make([]charts.SeriesOpts, 0, len(chpts))
	for _, chpt := range chpts {
		markLines = append(markLines, charts.WithMarkLineNameXAxisItemOpts(
			opts.MarkLineNameXAxisItem{
				Name:  chpt.Name,
				XAxis: chpt.T,
			},
		))
	}

	line.SetXAxis(t).
		AddSeries("Observed", lineDataObserved).
		AddSeries("Fit", lineDataFit, markLines...)
	return line
}
