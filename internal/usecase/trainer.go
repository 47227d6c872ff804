package usecase

import (
	"context"
	"fmt"
	"time"

	"CoinCast/internal/domain/models"
	drepo "CoinCast/internal/domain/repository"
	"CoinCast/internal/regression"
	applogger "CoinCast/pkg/logger"
	"CoinCast/pkg/util"
)

// TrainerConfig holds the trainer's fixed inputs.
type TrainerConfig struct {
	Coin     string
	Currency string
	Limit    int
}

// Trainer fits the row-index regression and persists the artifact.
type Trainer struct {
	series    drepo.SeriesReader
	artifacts drepo.ArtifactStore
	publisher drepo.ModelPublisher
	metrics   drepo.Metrics
	log       *applogger.Logger
	cfg       TrainerConfig
	now       func() time.Time
}

// NewTrainer creates a Trainer. publisher may be nil.
func NewTrainer(series drepo.SeriesReader, artifacts drepo.ArtifactStore, publisher drepo.ModelPublisher, metrics drepo.Metrics, log *applogger.Logger, cfg TrainerConfig) *Trainer {
	return &Trainer{
		series:    series,
		artifacts: artifacts,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Run trains once and returns the saved model.
func (t *Trainer) Run(ctx context.Context) (*models.Model, error) {
	start := time.Now()
	points, err := t.series.ReadSeries(ctx, t.cfg.Coin, t.cfg.Limit)
	if err != nil {
		return nil, err
	}

	prices := make([]float64, len(points))
	stamps := make([]int64, len(points))
	for i, p := range points {
		prices[i] = p.Price
		stamps[i] = util.ToMillis(p.Timestamp)
	}

	line, err := regression.FitIndex(prices)
	if err != nil {
		return nil, fmt.Errorf("fit %d rows: %w", len(points), err)
	}

	m := &models.Model{
		Version:   models.ModelVersion,
		Feature:   models.FeatureRowIndex,
		Slope:     line.Slope,
		Intercept: line.Intercept,
		OriginMs:  stamps[0],
		StepMs:    regression.MeanStep(stamps),
		Samples:   line.N,
		R2:        line.R2,
		MSE:       line.MSE,
		Coin:      t.cfg.Coin,
		Currency:  t.cfg.Currency,
		TrainedAt: t.now().UTC().Truncate(time.Millisecond),
	}
	if err := t.artifacts.SaveModel(ctx, m); err != nil {
		return nil, err
	}
	t.metrics.SetModel(m.Slope, m.Intercept, m.R2, m.Samples)
	t.metrics.RecordLatency("train", time.Since(start).Seconds())

	t.log.Info("model trained",
		applogger.Int("samples", m.Samples),
		applogger.Float64("slope", m.Slope),
		applogger.Float64("intercept", m.Intercept),
		applogger.Float64("r2", m.R2),
		applogger.Float64("mse", m.MSE),
	)

	// The artifact on disk is authoritative; a failed announcement is not fatal.
	if t.publisher != nil {
		if err := t.publisher.PublishModel(ctx, m); err != nil {
			t.metrics.RecordError("model_publish")
			t.log.Warn("model event publish failed", applogger.Error(err))
		}
	}
	return m, nil
}
