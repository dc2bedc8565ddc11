package features

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RollingStd calculates the trailing sample standard deviation over
// window observations. 윈도우가 차기 전 구간은 NaN으로 표시된다.
func RollingStd(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	for i := range series {
		if i+1 < window {
			out[i] = math.NaN()
			continue
		}
		out[i] = stat.StdDev(series[i+1-window:i+1], nil)
	}
	return out
}

// PctChange calculates the percent change relative to lag observations prior.
func PctChange(series []float64, lag int) []float64 {
	out := make([]float64, len(series))
	for i := range series {
		if i < lag || series[i-lag] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (series[i] - series[i-lag]) / series[i-lag]
	}
	return out
}

// FillMissing replaces NaN values with the most recent valid value,
// then defaults any remaining leading NaN to 0.
func FillMissing(series []float64) []float64 {
	out := make([]float64, len(series))
	last := math.NaN()
	for i, v := range series {
		if math.IsNaN(v) {
			v = last
		} else {
			last = v
		}
		if math.IsNaN(v) {
			v = 0
		}
		out[i] = v
	}
	return out
}

// lastOrZero returns the final element of a series, or 0 when empty.
func lastOrZero(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
