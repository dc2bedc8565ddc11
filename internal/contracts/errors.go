package contracts

import "errors"

// ⭐ SSOT: 도메인 에러 분류는 여기서만. 핸들러의 상태 코드 매핑이 이 값에 의존한다.
var (
	// ErrInstrumentNotFound 채권이 없거나 스냅샷을 만들 수 없음 (404)
	ErrInstrumentNotFound = errors.New("instrument not found or insufficient data")
	// ErrNoTrainingData 학습에 필요한 최소 표본 미달 (404)
	ErrNoTrainingData = errors.New("insufficient training data")
	// ErrModelUnavailable 대상 모델과 general 폴백 모두 부재 (503)
	ErrModelUnavailable = errors.New("model not available")
	// ErrTrainingFailed 피처/적합 단계의 수치 실패 (500)
	ErrTrainingFailed = errors.New("model training failed")
)
