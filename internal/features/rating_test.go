package features

import "testing"

func TestEncodeRating(t *testing.T) {
	tests := []struct {
		grade string
		want  float64
	}{
		{"AAA", 1.0},
		{"AA+", 0.9},
		{"AA", 0.8},
		{"AA-", 0.7},
		{"A+", 0.6},
		{"A", 0.5},
		{"A-", 0.4},
		{"BBB+", 0.3},
		{"BBB", 0.2},
		{"BBB-", 0.1},
	}

	for _, tt := range tests {
		if got := EncodeRating(tt.grade); got != tt.want {
			t.Errorf("EncodeRating(%q) = %v, want %v", tt.grade, got, tt.want)
		}
	}
}

func TestEncodeRating_UnknownGrade(t *testing.T) {
	// 미지 등급은 에러 없이 기본값으로 내려간다
	for _, grade := range []string{"CCC", "NR", "", "aaa", "AA +"} {
		if got := EncodeRating(grade); got != DefaultRatingScore {
			t.Errorf("EncodeRating(%q) = %v, want default %v", grade, got, DefaultRatingScore)
		}
	}
}
