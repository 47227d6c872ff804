package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CoinCast/internal/domain/models"
	drepo "CoinCast/internal/domain/repository"
	applogger "CoinCast/pkg/logger"
)

// MarketQuery selects the market_chart series to fetch.
type MarketQuery struct {
	Coin     string
	Currency string
	Days     string
}

// Fetcher downloads the raw market chart and stores it verbatim.
type Fetcher struct {
	source  drepo.MarketSource
	raw     drepo.RawStore
	metrics drepo.Metrics
	log     *applogger.Logger
	query   MarketQuery
}

// NewFetcher creates a new Fetcher instance.
func NewFetcher(source drepo.MarketSource, raw drepo.RawStore, metrics drepo.Metrics, log *applogger.Logger, q MarketQuery) *Fetcher {
	return &Fetcher{source: source, raw: raw, metrics: metrics, log: log, query: q}
}

// Run fetches once. Nothing is written unless the upstream answered 200
// with a decodable body.
func (f *Fetcher) Run(ctx context.Context) (int, error) {
	start := time.Now()
	body, err := f.source.MarketChart(ctx, f.query.Coin, f.query.Currency, f.query.Days)
	f.metrics.RecordLatency("fetch", time.Since(start).Seconds())
	if err != nil {
		f.metrics.RecordFetch(f.query.Coin, "error")
		return 0, err
	}

	var chart models.MarketChart
	if err := json.Unmarshal(body, &chart); err != nil {
		f.metrics.RecordFetch(f.query.Coin, "invalid")
		return 0, fmt.Errorf("decode market chart: %w", err)
	}

	if err := f.raw.WriteRaw(ctx, body); err != nil {
		f.metrics.RecordError("raw_write")
		return 0, err
	}
	f.metrics.RecordFetch(f.query.Coin, "ok")

	f.log.Info("market chart saved",
		applogger.String("coin", f.query.Coin),
		applogger.String("currency", f.query.Currency),
		applogger.String("days", f.query.Days),
		applogger.Int("prices", len(chart.Prices)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return len(chart.Prices), nil
}
