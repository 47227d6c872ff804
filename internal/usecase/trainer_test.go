package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CoinCast/internal/domain/models"
	"CoinCast/internal/regression"
	applogger "CoinCast/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearSeries(n int, origin time.Time, step time.Duration) []models.PricePoint {
	pts := make([]models.PricePoint, n)
	for i := range pts {
		pts[i] = models.PricePoint{Timestamp: origin.Add(time.Duration(i) * step), Price: 2*float64(i) + 5}
	}
	return pts
}

func TestTrainerFitsRowIndex(t *testing.T) {
	origin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := &memSeries{points: linearSeries(24, origin, time.Hour)}
	arts := &memArtifacts{}
	pub := &recordingPublisher{}

	tr := NewTrainer(series, arts, pub, nopMetrics, applogger.Nop(), TrainerConfig{Coin: "bitcoin", Currency: "usd"})
	tr.now = func() time.Time { return origin.Add(48 * time.Hour) }

	m, err := tr.Run(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 2, m.Slope, 1e-9)
	assert.InDelta(t, 5, m.Intercept, 1e-9)
	assert.Equal(t, models.ModelVersion, m.Version)
	assert.Equal(t, models.FeatureRowIndex, m.Feature)
	assert.Equal(t, origin.UnixMilli(), m.OriginMs)
	assert.Equal(t, float64(time.Hour.Milliseconds()), m.StepMs)
	assert.Equal(t, 24, m.Samples)
	assert.InDelta(t, 1, m.R2, 1e-12)
	assert.Equal(t, origin.Add(48*time.Hour), m.TrainedAt)

	saved, err := arts.LoadModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, m.Slope, saved.Slope)
	require.Len(t, pub.published, 1)
}

func TestTrainerNeedsTwoRows(t *testing.T) {
	series := &memSeries{points: linearSeries(1, time.Now(), time.Hour)}
	arts := &memArtifacts{}

	_, err := NewTrainer(series, arts, nil, nopMetrics, applogger.Nop(), TrainerConfig{}).Run(context.Background())
	assert.ErrorIs(t, err, regression.ErrInsufficientData)
	assert.Nil(t, arts.m)
}

func TestTrainerPublishFailureIsNotFatal(t *testing.T) {
	series := &memSeries{points: linearSeries(3, time.Now(), time.Minute)}
	arts := &memArtifacts{}
	pub := &recordingPublisher{err: errors.New("broker down")}

	_, err := NewTrainer(series, arts, pub, nopMetrics, applogger.Nop(), TrainerConfig{}).Run(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, arts.m)
}
