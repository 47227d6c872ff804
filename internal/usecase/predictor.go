package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"CoinCast/internal/domain/models"
	drepo "CoinCast/internal/domain/repository"
	applogger "CoinCast/pkg/logger"
	"CoinCast/pkg/util"
)

var ErrModelNotLoaded = errors.New("model not loaded")

// Predictor serves predictions from the current model. The model is
// replaced by pointer swap, so readers never see a partial update.
type Predictor struct {
	store   drepo.ArtifactStore
	metrics drepo.Metrics
	log     *applogger.Logger
	current atomic.Pointer[models.Model]

	mu   sync.Mutex
	subs map[chan *models.Model]struct{}
}

// NewPredictor creates a Predictor with no model loaded.
func NewPredictor(store drepo.ArtifactStore, metrics drepo.Metrics, log *applogger.Logger) *Predictor {
	return &Predictor{
		store:   store,
		metrics: metrics,
		log:     log,
		subs:    make(map[chan *models.Model]struct{}),
	}
}

// Reload reads the artifact from the store and installs it.
func (p *Predictor) Reload(ctx context.Context) (*models.Model, error) {
	m, err := p.store.LoadModel(ctx)
	if err != nil {
		p.metrics.RecordError("model_load")
		return nil, err
	}
	if err := p.Install(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Install swaps in m after checking it and notifies subscribers.
func (p *Predictor) Install(m *models.Model) error {
	if m == nil {
		return ErrModelNotLoaded
	}
	if err := m.Check(); err != nil {
		p.metrics.RecordError("model_check")
		return err
	}
	p.current.Store(m)
	p.metrics.SetModel(m.Slope, m.Intercept, m.R2, m.Samples)
	p.log.Info("model installed",
		applogger.String("coin", m.Coin),
		applogger.Int("samples", m.Samples),
		applogger.String("trained_at", m.TrainedAt.Format(time.RFC3339)),
	)
	p.broadcast(m)
	return nil
}

// Current returns the installed model.
func (p *Predictor) Current() (*models.Model, error) {
	m := p.current.Load()
	if m == nil {
		return nil, ErrModelNotLoaded
	}
	return m, nil
}

// Predict maps ts (Unix seconds or milliseconds) onto the training row index
// and evaluates the model there. The response echoes ts unchanged.
func (p *Predictor) Predict(ts int64) (models.PredictResponse, error) {
	m, err := p.Current()
	if err != nil {
		return models.PredictResponse{}, err
	}
	price := m.PredictIndex(m.Index(util.EpochMillis(ts)))
	p.metrics.RecordPrediction()
	return models.PredictResponse{Timestamp: ts, PredictedPrice: price}, nil
}

// Subscribe returns a channel that receives every installed model. Slow
// subscribers only ever see the latest one. Call cancel to unsubscribe.
func (p *Predictor) Subscribe() (<-chan *models.Model, func()) {
	ch := make(chan *models.Model, 1)
	p.mu.Lock()
	p.subs[ch] = struct{}{}
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, ch)
			p.mu.Unlock()
		})
	}
}

func (p *Predictor) broadcast(m *models.Model) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		ch <- m
	}
}
