package repository

import (
	"context"

	"CoinCast/internal/domain/models"
)

// MarketSource fetches raw market_chart bytes from upstream.
type MarketSource interface {
	MarketChart(ctx context.Context, coin, currency string, days string) ([]byte, error)
	Get(ctx context.Context, endpoint string) ([]byte, error)
}

// RawStore persists the raw upstream payload.
type RawStore interface {
	WriteRaw(ctx context.Context, b []byte) error
	ReadRaw(ctx context.Context) ([]byte, error)
}

// SeriesWriter persists processed rows.
type SeriesWriter interface {
	WriteSeries(ctx context.Context, coin string, points []models.PricePoint) error
}

// SeriesReader loads processed rows in source order.
type SeriesReader interface {
	ReadSeries(ctx context.Context, coin string, limit int) ([]models.PricePoint, error)
}

// ArtifactStore persists the trained model.
type ArtifactStore interface {
	SaveModel(ctx context.Context, m *models.Model) error
	LoadModel(ctx context.Context) (*models.Model, error)
}

// ModelPublisher announces newly trained models.
type ModelPublisher interface {
	PublishModel(ctx context.Context, m *models.Model) error
}

type Metrics interface {
	RecordFetch(coin, result string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordPrediction()
	RecordCache(result string)
	SetModel(slope, intercept, r2 float64, samples int)
}
