package usecase

import (
	"context"
	"sync"

	"CoinCast/internal/domain/models"
	"CoinCast/pkg/metrics"
)

type fakeSource struct {
	body  []byte
	err   error
	calls int
	paths []string
}

func (f *fakeSource) MarketChart(context.Context, string, string, string) ([]byte, error) {
	f.calls++
	return f.body, f.err
}

func (f *fakeSource) Get(_ context.Context, endpoint string) ([]byte, error) {
	f.calls++
	f.paths = append(f.paths, endpoint)
	return f.body, f.err
}

type memRaw struct {
	b      []byte
	writes int
}

func (m *memRaw) WriteRaw(_ context.Context, b []byte) error {
	m.writes++
	m.b = append([]byte(nil), b...)
	return nil
}

func (m *memRaw) ReadRaw(context.Context) ([]byte, error) { return m.b, nil }

type memSeries struct {
	points []models.PricePoint
}

func (m *memSeries) WriteSeries(_ context.Context, _ string, p []models.PricePoint) error {
	m.points = append([]models.PricePoint(nil), p...)
	return nil
}

func (m *memSeries) ReadSeries(_ context.Context, _ string, limit int) ([]models.PricePoint, error) {
	if limit > 0 && len(m.points) > limit {
		return m.points[len(m.points)-limit:], nil
	}
	return m.points, nil
}

type memArtifacts struct {
	mu sync.Mutex
	m  *models.Model
}

func (a *memArtifacts) SaveModel(_ context.Context, m *models.Model) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	cp := *m
	a.m = &cp
	return nil
}

func (a *memArtifacts) LoadModel(context.Context) (*models.Model, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.m == nil {
		return nil, ErrModelNotLoaded
	}
	cp := *a.m
	return &cp, nil
}

type recordingPublisher struct {
	published []*models.Model
	err       error
}

func (p *recordingPublisher) PublishModel(_ context.Context, m *models.Model) error {
	p.published = append(p.published, m)
	return p.err
}

var nopMetrics = metrics.Nop{}
