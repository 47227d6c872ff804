package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"CoinCast/internal/domain/models"
	drepo "CoinCast/internal/domain/repository"
	applogger "CoinCast/pkg/logger"
)

// Preprocessor turns the raw market chart into the timestamp/price series.
type Preprocessor struct {
	raw   drepo.RawStore
	sinks []drepo.SeriesWriter
	coin  string
	log   *applogger.Logger
}

// NewPreprocessor writes to every sink in order; the first is the CSV file.
func NewPreprocessor(raw drepo.RawStore, coin string, log *applogger.Logger, sinks ...drepo.SeriesWriter) *Preprocessor {
	return &Preprocessor{raw: raw, sinks: sinks, coin: coin, log: log}
}

// Run converts every price pair in source order and returns the row count.
func (p *Preprocessor) Run(ctx context.Context) (int, error) {
	b, err := p.raw.ReadRaw(ctx)
	if err != nil {
		return 0, err
	}

	var chart models.MarketChart
	if err := json.Unmarshal(b, &chart); err != nil {
		return 0, fmt.Errorf("decode raw market chart: %w", err)
	}
	points, err := chart.Points()
	if err != nil {
		return 0, err
	}

	for _, s := range p.sinks {
		if err := s.WriteSeries(ctx, p.coin, points); err != nil {
			return 0, err
		}
	}

	p.log.Info("series processed",
		applogger.String("coin", p.coin),
		applogger.Int("rows", len(points)),
		applogger.Int("sinks", len(p.sinks)),
	)
	return len(points), nil
}
