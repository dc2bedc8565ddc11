package ml

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RSquared 결정계수. 실측 분산이 0이거나 표본이 부족하면
// NaN 대신 0을 반환해 지표 직렬화를 깨뜨리지 않는다.
func RSquared(predicted, actual []float64) float64 {
	if len(actual) < 2 || len(predicted) != len(actual) {
		return 0
	}
	if stat.Variance(actual, nil) == 0 {
		return 0
	}
	return stat.RSquaredFrom(predicted, actual, nil)
}

// MAE mean absolute error
func MAE(predicted, actual []float64) float64 {
	if len(actual) == 0 || len(predicted) != len(actual) {
		return 0
	}
	var sum float64
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// RMSE root mean squared error
func RMSE(predicted, actual []float64) float64 {
	if len(actual) == 0 || len(predicted) != len(actual) {
		return 0
	}
	var sum float64
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual)))
}
