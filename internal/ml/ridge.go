package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Ridge L2 정규화 선형회귀
// ⭐ SSOT: 가격 모델 적합은 여기서만. 절편은 정규화 대상에서 제외된다.
type Ridge struct {
	Alpha     float64   `json:"alpha"`
	Intercept float64   `json:"intercept"`
	Coefs     []float64 `json:"coefs"`
}

// FitRidge solves the normal equations (XᶜᵀXᶜ + αI)β = XᶜᵀYᶜ on
// mean-centered data, then recovers the intercept from the means.
func FitRidge(x [][]float64, y []float64, alpha float64) (*Ridge, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("invalid training shape: %d rows, %d targets", n, len(y))
	}
	p := len(x[0])
	if p == 0 {
		return nil, fmt.Errorf("no feature columns")
	}
	if alpha < 0 {
		return nil, fmt.Errorf("negative regularization strength %v", alpha)
	}

	colMeans := make([]float64, p)
	for i, row := range x {
		if len(row) != p {
			return nil, fmt.Errorf("ragged matrix: row %d has %d columns, want %d", i, len(row), p)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("non-finite feature value at row %d column %d", i, j)
			}
			colMeans[j] += v
		}
	}
	for j := range colMeans {
		colMeans[j] /= float64(n)
	}

	var yMean float64
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite target value at row %d", i)
		}
		yMean += v
	}
	yMean /= float64(n)

	xc := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i, row := range x {
		for j, v := range row {
			xc.Set(i, j, v-colMeans[j])
		}
		yc.SetVec(i, y[i]-yMean)
	}

	var xtx mat.Dense
	xtx.Mul(xc.T(), xc)
	for j := 0; j < p; j++ {
		xtx.Set(j, j, xtx.At(j, j)+alpha)
	}

	var xty mat.VecDense
	xty.MulVec(xc.T(), yc)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		return nil, fmt.Errorf("normal equations singular: %w", err)
	}

	coefs := make([]float64, p)
	intercept := yMean
	for j := 0; j < p; j++ {
		coefs[j] = beta.AtVec(j)
		intercept -= coefs[j] * colMeans[j]
	}

	return &Ridge{Alpha: alpha, Intercept: intercept, Coefs: coefs}, nil
}

// Predict returns the point estimate for one feature vector.
func (r *Ridge) Predict(vec []float64) (float64, error) {
	if len(vec) != len(r.Coefs) {
		return 0, fmt.Errorf("dimension mismatch: got %d features, model has %d coefficients", len(vec), len(r.Coefs))
	}
	out := r.Intercept
	for i, v := range vec {
		out += r.Coefs[i] * v
	}
	return out, nil
}

// PredictBatch evaluates every row of x.
func (r *Ridge) PredictBatch(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		pred, err := r.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = pred
	}
	return out, nil
}
