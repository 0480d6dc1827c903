// Command trend-demo simulates a seasonal series with a trend, level shifts,
// and holiday effects, runs the analyzer over it, and writes an html page
// with the resulting fit along with the serialized model to stdout.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	trend "github.com/aouyang1/go-trend"
	"github.com/aouyang1/go-trend/timeseries"
	"github.com/goccy/go-json"
	"github.com/pkg/profile"
)

func main() {
	var (
		out        = flag.String("out", "trend_fit.html", "output path of the rendered fit page")
		period     = flag.Int("period", 1440, "seasonal period in observations")
		profileCPU = flag.Bool("profile", false, "enable cpu profiling")
	)
	flag.Parse()

	if *profileCPU {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	if err := run(*out, *period); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(out string, period int) error {
	t, y := generateSeries()

	opt := trend.NewDefaultOptions()
	opt.Period = period

	a, err := trend.New(opt)
	if err != nil {
		return fmt.Errorf("unable to initialize analyzer, %w", err)
	}
	if err := a.Fit(t, y); err != nil {
		return fmt.Errorf("unable to fit series, %w", err)
	}

	file, err := os.Create(out)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := a.PlotFit(file, nil); err != nil {
		return fmt.Errorf("unable to render fit page, %w", err)
	}

	m, err := a.Model()
	if err != nil {
		return fmt.Errorf("unable to fetch model, %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("unable to serialize model, %w", err)
	}

	eq, err := a.ModelEq()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s\n", eq)
	fmt.Fprintf(os.Stderr, "trend: %s (tau=%.3f, p=%.4f)\n",
		a.TrendTest().Direction, a.TrendTest().Tau, a.TrendTest().PValue)
	for _, chpt := range a.Changepoints() {
		fmt.Fprintf(os.Stderr, "changepoint %s at %s\n", chpt.Name, chpt.T)
	}
	return nil
}

func generateSeries() ([]time.Time, []float64) {
	// four weeks at minutely with a daily cycle, an upward drift, a mid
	// series level shift, and holiday spikes
	minutes := 28 * 24 * 60
	t := timeseries.GenerateT(minutes, time.Minute, time.Now)
	y := make(timeseries.Series, minutes)

	dailyPeriod := 86400.0
	y.Add(timeseries.GenerateConstY(minutes, 98.3)).
		Add(timeseries.GenerateLineY(minutes, 0.0, 0.0005)).
		Add(timeseries.GenerateWaveY(t, 10.5, dailyPeriod, 1.0, 2*60*60)).
		Add(timeseries.GenerateWaveY(t, 4.6, dailyPeriod, 3.0, 2.0*60*60+dailyPeriod/2.0/2.0/3.0)).
		Add(timeseries.GenerateNoise(t, 3.2, 3.2, dailyPeriod, 5.0, 0.0)).
		Add(timeseries.GenerateChange(t, t[minutes/2], 10.0, 0.0)).
		Add(timeseries.GenerateChristmasY(t, 25.0)).
		Add(timeseries.GenerateThanksgivingY(t, 17.0))

	return t, y
}
