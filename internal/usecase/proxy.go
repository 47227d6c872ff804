package usecase

import (
	"context"
	"errors"
	"time"

	drepo "CoinCast/internal/domain/repository"
	"CoinCast/internal/service/coingecko"
	"CoinCast/pkg/cache"
	applogger "CoinCast/pkg/logger"
)

// CoinGeckoProxy forwards API paths upstream and caches successful bodies.
type CoinGeckoProxy struct {
	source  drepo.MarketSource
	cache   cache.Service
	ttl     time.Duration
	metrics drepo.Metrics
	log     *applogger.Logger
}

func NewCoinGeckoProxy(source drepo.MarketSource, c cache.Service, ttl time.Duration, metrics drepo.Metrics, log *applogger.Logger) *CoinGeckoProxy {
	return &CoinGeckoProxy{source: source, cache: c, ttl: ttl, metrics: metrics, log: log}
}

// Get returns the upstream body for endpoint and whether it came from cache.
func (p *CoinGeckoProxy) Get(ctx context.Context, endpoint string) ([]byte, bool, error) {
	path, err := coingecko.NormalizeEndpoint(endpoint)
	if err != nil {
		return nil, false, err
	}
	key := cache.GenerateKey("coingecko", path)

	var body []byte
	err = p.cache.Get(ctx, key, &body)
	switch {
	case err == nil:
		p.metrics.RecordCache("hit")
		return body, true, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		p.log.Warn("proxy cache read failed", applogger.String("key", key), applogger.Error(err))
	}
	p.metrics.RecordCache("miss")

	start := time.Now()
	body, err = p.source.Get(ctx, path)
	p.metrics.RecordLatency("proxy_upstream", time.Since(start).Seconds())
	if err != nil {
		p.metrics.RecordError("proxy_upstream")
		return nil, false, err
	}

	if err := p.cache.Set(ctx, key, body, p.ttl); err != nil {
		p.log.Warn("proxy cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return body, false, nil
}
