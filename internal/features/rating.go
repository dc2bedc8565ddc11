package features

// DefaultRatingScore 미지/비표준 등급의 인코딩 값
const DefaultRatingScore = 0.1

// ratingScale 신용등급 서수 인코딩 (높은 신용도 → 1.0)
// ⭐ SSOT: 등급 스케일 정의는 여기서만
var ratingScale = map[string]float64{
	"AAA":  1.0,
	"AA+":  0.9,
	"AA":   0.8,
	"AA-":  0.7,
	"A+":   0.6,
	"A":    0.5,
	"A-":   0.4,
	"BBB+": 0.3,
	"BBB":  0.2,
	"BBB-": 0.1,
}

// EncodeRating maps a rating grade to its numeric score.
// Unrecognized grades encode to DefaultRatingScore, never an error.
func EncodeRating(grade string) float64 {
	if score, ok := ratingScale[grade]; ok {
		return score
	}
	return DefaultRatingScore
}
