package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CoinCast/internal/service/coingecko"
	"CoinCast/pkg/cache"
	applogger "CoinCast/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyCachesUpstreamBody(t *testing.T) {
	src := &fakeSource{body: []byte(`{"gecko_says":"(V3) To the Moon!"}`)}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	p := NewCoinGeckoProxy(src, mc, time.Minute, nopMetrics, applogger.Nop())

	body, cached, err := p.Get(context.Background(), "ping")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Contains(t, string(body), "Moon")

	body, cached, err = p.Get(context.Background(), "/ping")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Contains(t, string(body), "Moon")
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, []string{"/ping"}, src.paths)
}

func TestProxyDoesNotCacheErrors(t *testing.T) {
	src := &fakeSource{err: errors.New("upstream down")}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	p := NewCoinGeckoProxy(src, mc, time.Minute, nopMetrics, applogger.Nop())

	_, _, err := p.Get(context.Background(), "/ping")
	require.Error(t, err)
	_, _, err = p.Get(context.Background(), "/ping")
	require.Error(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestProxyRejectsTraversal(t *testing.T) {
	src := &fakeSource{}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	p := NewCoinGeckoProxy(src, mc, time.Minute, nopMetrics, applogger.Nop())

	_, _, err := p.Get(context.Background(), "/../secret")
	assert.ErrorIs(t, err, coingecko.ErrInvalidEndpoint)
	assert.Zero(t, src.calls)
}
