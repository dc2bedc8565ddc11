package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler z-score 표준화기. 학습 분할에서 적합된 뒤
// 모델 번들에 직렬화되어 추론 입력에 그대로 재사용된다.
type StandardScaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

// FitScaler learns per-column mean and population standard deviation.
// 분산이 0인 컬럼은 스케일 1로 고정해 0-나눗셈을 막는다.
func FitScaler(x [][]float64) (*StandardScaler, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("cannot fit scaler on empty matrix")
	}
	cols := len(x[0])
	if cols == 0 {
		return nil, fmt.Errorf("cannot fit scaler without feature columns")
	}
	for i, row := range x {
		if len(row) != cols {
			return nil, fmt.Errorf("ragged matrix: row %d has %d columns, want %d", i, len(row), cols)
		}
	}

	means := make([]float64, cols)
	stds := make([]float64, cols)
	column := make([]float64, len(x))
	for j := 0; j < cols; j++ {
		for i, row := range x {
			column[i] = row[j]
		}
		means[j] = stat.Mean(column, nil)
		sd := stat.PopStdDev(column, nil)
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		stds[j] = sd
	}

	return &StandardScaler{Means: means, Stds: stds}, nil
}

// Transform standardizes a single feature vector.
func (s *StandardScaler) Transform(vec []float64) ([]float64, error) {
	if len(vec) != len(s.Means) {
		return nil, fmt.Errorf("dimension mismatch: got %d features, scaler fitted on %d", len(vec), len(s.Means))
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = (v - s.Means[i]) / s.Stds[i]
	}
	return out, nil
}

// TransformMatrix standardizes every row of x.
func (s *StandardScaler) TransformMatrix(x [][]float64) ([][]float64, error) {
	out := make([][]float64, len(x))
	for i, row := range x {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = scaled
	}
	return out, nil
}

// InverseTransform maps a standardized vector back to the original scale.
func (s *StandardScaler) InverseTransform(vec []float64) ([]float64, error) {
	if len(vec) != len(s.Means) {
		return nil, fmt.Errorf("dimension mismatch: got %d features, scaler fitted on %d", len(vec), len(s.Means))
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = v*s.Stds[i] + s.Means[i]
	}
	return out, nil
}
