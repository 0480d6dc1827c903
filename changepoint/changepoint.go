// Package changepoint detects shifts in the generating statistics of a series
// using binary segmentation over within-segment squared error.
package changepoint

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aouyang1/go-trend/timeseries"
)

// Changepoint describes a detected shift in the series. Index is the first
// observation of the post-shift segment.
type Changepoint struct {
	Index int       `json:"index"`
	T     time.Time `json:"time"`
	Name  string    `json:"name"`
}

func New(name string, index int, t time.Time) Changepoint {
	return Changepoint{index, t, name}
}

// DetectN finds exactly maxPoints breakpoint indexes by repeatedly splitting
// the segment whose best split yields the largest reduction in total squared
// deviation from segment means. Fewer indexes are returned when no further
// split reduces the error. The result is in increasing index order.
func DetectN(y []float64, maxPoints int) ([]int, error) {
	if maxPoints < 1 {
		return nil, fmt.Errorf("breakpoint count %d must be at least 1, %w", maxPoints, timeseries.ErrInvalidParameter)
	}
	if maxPoints >= len(y) {
		return nil, fmt.Errorf("breakpoint count %d must be less than series length %d, %w",
			maxPoints, len(y), timeseries.ErrInvalidParameter)
	}
	return segment(y, maxPoints, 0.0)
}

// DetectPenalty splits until the marginal reduction in total squared error of
// the best available split falls below the penalty.
func DetectPenalty(y []float64, penalty float64) ([]int, error) {
	if penalty < 0 {
		return nil, fmt.Errorf("penalty %f must be non-negative, %w", penalty, timeseries.ErrInvalidParameter)
	}
	if len(y) < 2 {
		return nil, fmt.Errorf("need at least 2 observations to segment, got %d, %w",
			len(y), timeseries.ErrInsufficientData)
	}
	return segment(y, len(y)-1, penalty)
}

// seg is a half-open segment [start, end) with its cached best split.
type seg struct {
	start, end int
	split      int
	gain       float64
}

func segment(y []float64, maxPoints int, penalty float64) ([]int, error) {
	n := len(y)
	for i, v := range y {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("missing observation at %d, fill or drop missing values before segmenting, %w",
				i, timeseries.ErrInvalidParameter)
		}
	}

	// prefix sums make any segment cost an O(1) lookup
	sum := make([]float64, n+1)
	sumSq := make([]float64, n+1)
	for i := 0; i < n; i++ {
		sum[i+1] = sum[i] + y[i]
		sumSq[i+1] = sumSq[i] + y[i]*y[i]
	}
	cost := func(a, b int) float64 {
		if b <= a {
			return 0.0
		}
		s := sum[b] - sum[a]
		return sumSq[b] - sumSq[a] - s*s/float64(b-a)
	}
	bestSplit := func(a, b int) (int, float64) {
		base := cost(a, b)
		split := -1
		best := math.Inf(1)
		for k := a + 1; k < b; k++ {
			c := cost(a, k) + cost(k, b)
			if c < best {
				best = c
				split = k
			}
		}
		if split < 0 {
			return -1, 0.0
		}
		return split, base - best
	}

	segments := []seg{newSeg(0, n, bestSplit)}
	var breakpoints []int
	for len(breakpoints) < maxPoints {
		bestIdx := -1
		bestGain := 0.0
		for i, sg := range segments {
			if sg.split < 0 {
				continue
			}
			if sg.gain > bestGain {
				bestGain = sg.gain
				bestIdx = i
			}
		}
		if bestIdx < 0 || bestGain <= penalty {
			break
		}

		sg := segments[bestIdx]
		breakpoints = append(breakpoints, sg.split)
		segments[bestIdx] = newSeg(sg.start, sg.split, bestSplit)
		segments = append(segments, newSeg(sg.split, sg.end, bestSplit))
	}

	sort.Ints(breakpoints)
	return breakpoints, nil
}

func newSeg(a, b int, bestSplit func(a, b int) (int, float64)) seg {
	split, gain := bestSplit(a, b)
	return seg{
		start: a,
		end:   b,
		split: split,
		gain:  gain,
	}
}
