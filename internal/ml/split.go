package ml

import (
	"math"
	"math/rand"
)

// Split partitions row indices [0,n) into shuffled train/test sets.
// 같은 (n, testRatio, seed) 입력은 항상 같은 분할을 낸다.
func Split(n int, testRatio float64, seed int64) (trainIdx, testIdx []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(n)

	testN := int(math.Ceil(float64(n) * testRatio))
	if n > 0 && testN >= n {
		testN = n - 1 // 학습 쪽에 최소 1행은 남긴다
	}
	cut := n - testN
	return indices[:cut], indices[cut:]
}

// Take gathers the rows of x and y selected by idx.
func Take(x [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	outX := make([][]float64, len(idx))
	outY := make([]float64, len(idx))
	for i, k := range idx {
		outX[i] = x[k]
		outY[i] = y[k]
	}
	return outX, outY
}
