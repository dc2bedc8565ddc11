package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinchan-op/SEBI-Hackathon/internal/contracts"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/config"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/redis"
)

type fakeTrainer struct {
	report *contracts.TrainingReport
	err    error
	gotID  *int64
	called bool
}

func (f *fakeTrainer) Train(ctx context.Context, bondID *int64) (*contracts.TrainingReport, error) {
	f.called = true
	f.gotID = bondID
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func testReport(key string) *contracts.TrainingReport {
	return &contracts.TrainingReport{
		ModelKey:     key,
		Samples:      40,
		TrainSamples: 32,
		TestSamples:  8,
		TrainR2:      0.95,
		TestR2:       0.88,
		MAE:          0.31,
		RMSE:         0.42,
		TrainedAt:    time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC),
	}
}

func TestTrainHandler_PerBond(t *testing.T) {
	fake := &fakeTrainer{report: testReport("bond_101")}
	h := NewTrainHandler(fake, nil, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/train?bond_id=101", nil)
	rec := httptest.NewRecorder()
	h.Train(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fake.gotID)
	assert.Equal(t, int64(101), *fake.gotID)

	var body TrainResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Model training completed for bond 101", body.Message)
	require.NotNil(t, body.Report)
	assert.Equal(t, "bond_101", body.Report.ModelKey)
	assert.InDelta(t, 0.88, body.Report.TestR2, 1e-9)
}

func TestTrainHandler_GeneralWhenNoBondID(t *testing.T) {
	fake := &fakeTrainer{report: testReport(contracts.KeyGeneral)}
	h := NewTrainHandler(fake, nil, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/train", nil)
	rec := httptest.NewRecorder()
	h.Train(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, fake.called)
	assert.Nil(t, fake.gotID) // bond_id 생략 = 풀링 모델
}

func TestTrainHandler_InvalidBondID(t *testing.T) {
	fake := &fakeTrainer{}
	h := NewTrainHandler(fake, nil, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/train?bond_id=abc", nil)
	rec := httptest.NewRecorder()
	h.Train(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, fake.called)
}

func TestTrainHandler_NoTrainingData(t *testing.T) {
	fake := &fakeTrainer{err: fmt.Errorf("bond_7: 3 rows: %w", contracts.ErrNoTrainingData)}
	h := NewTrainHandler(fake, nil, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/train?bond_id=7", nil)
	rec := httptest.NewRecorder()
	h.Train(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "No training data available for bond 7", body["error"])
}

func TestTrainHandler_TrainingFailure(t *testing.T) {
	fake := &fakeTrainer{err: errors.New("singular matrix")}
	h := NewTrainHandler(fake, nil, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/train", nil)
	rec := httptest.NewRecorder()
	h.Train(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTrainHandler_DisabledRedisLimiterAllows(t *testing.T) {
	// Redis가 꺼진 배포에서는 리미터가 전부 통과시킨다
	client, err := redis.New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	limiter := redis.NewRateLimiter(client, "test")

	fake := &fakeTrainer{report: testReport(contracts.KeyGeneral)}
	h := NewTrainHandler(fake, limiter, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/train", nil)
	rec := httptest.NewRecorder()
	h.Train(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, fake.called)
}
