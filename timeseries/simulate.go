package timeseries

import (
	"math"
	"math/rand"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// GenerateT generates a slice of n timestamps at the given interval ending
// just before the time returned by nowFunc.
func GenerateT(n int, interval time.Duration, nowFunc func() time.Time) []time.Time {
	t := make([]time.Time, 0, n)
	ct := time.Unix(nowFunc().Unix()/60*60, 0).Add(-time.Duration(n) * interval).UTC()
	for i := 0; i < n; i++ {
		t = append(t, ct.Add(interval*time.Duration(i)))
	}
	return t
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateLineY generates a linear ramp, slope per observation, useful for
// injecting a deterministic trend.
func GenerateLineY(n int, bias, slope float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, bias+slope*float64(i))
	}
	return Series(y)
}

func GenerateWaveY(t []time.Time, amp, periodSec, order, timeOffset float64) Series {
	n := len(t)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		val := amp * math.Sin(2.0*math.Pi*order/periodSec*(float64(t[i].Unix())+timeOffset))
		y = append(y, val)
	}
	return Series(y)
}

func GenerateNoise(t []time.Time, noiseScale, amp, periodSec, order, timeOffset float64) Series {
	n := len(t)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		scale := (noiseScale + amp*math.Sin(2.0*math.Pi*order/periodSec*(float64(t[i].Unix())+timeOffset)))
		y = append(y, rand.NormFloat64()*scale)
	}
	return Series(y)
}

// GenerateChange generates a level shift with an optional slope change
// starting at the input changepoint time.
func GenerateChange(t []time.Time, chpt time.Time, bias, slope float64) Series {
	n := len(t)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		if t[i].After(chpt) || t[i].Equal(chpt) {
			jump := bias + slope*t[i].Sub(chpt).Minutes()
			y[i] = jump
		}
	}
	return Series(y)
}

func GenerateChristmasY(t []time.Time, amp float64) Series {
	return GenerateHolidayY(t, us.ChristmasDay, amp)
}

func GenerateThanksgivingY(t []time.Time, amp float64) Series {
	return GenerateHolidayY(t, us.ThanksgivingDay, amp)
}

// GenerateHolidayY generates a series with a constant effect of amp on each
// observed day of the input holiday and zero everywhere else.
func GenerateHolidayY(t []time.Time, hol *cal.Holiday, amp float64) Series {
	n := len(t)
	y := make([]float64, n)
	if n == 0 {
		return Series(y)
	}

	days := make(map[string]struct{})
	for yr := t[0].Year(); yr <= t[n-1].Year(); yr++ {
		_, observed := hol.Calc(yr)
		days[observed.Format(time.DateOnly)] = struct{}{}
	}
	for i := 0; i < n; i++ {
		if _, exists := days[t[i].Format(time.DateOnly)]; exists {
			y[i] = amp
		}
	}
	return Series(y)
}
