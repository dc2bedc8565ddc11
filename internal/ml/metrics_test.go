package ml

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRSquared(t *testing.T) {
	actual := []float64{1, 2, 3, 4}

	assert.InDelta(t, 1.0, RSquared(actual, actual), 1e-9, "perfect prediction")

	// 평균 예측은 R²=0
	meanPred := []float64{2.5, 2.5, 2.5, 2.5}
	assert.InDelta(t, 0.0, RSquared(meanPred, actual), 1e-9)
}

func TestRSquared_DegenerateInput(t *testing.T) {
	// 실측 분산 0 → NaN 대신 0
	assert.Equal(t, 0.0, RSquared([]float64{4, 5}, []float64{3, 3}))
	// 표본 부족
	assert.Equal(t, 0.0, RSquared([]float64{1}, []float64{1}))
	// 길이 불일치
	assert.Equal(t, 0.0, RSquared([]float64{1, 2}, []float64{1, 2, 3}))
}

func TestMAE(t *testing.T) {
	got := MAE([]float64{1, 2}, []float64{2, 4})
	assert.InDelta(t, 1.5, got, 1e-9)

	assert.Equal(t, 0.0, MAE(nil, nil))
}

func TestRMSE(t *testing.T) {
	got := RMSE([]float64{1, 2}, []float64{2, 4})
	assert.InDelta(t, math.Sqrt(2.5), got, 1e-9)

	assert.Equal(t, 0.0, RMSE(nil, nil))
}
