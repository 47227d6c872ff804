package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	xhttp "CoinCast/pkg/http"
	applogger "CoinCast/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testQuery = MarketQuery{Coin: "bitcoin", Currency: "usd", Days: "30"}

func TestFetcherWritesBodyVerbatim(t *testing.T) {
	body := []byte(`{"prices":[[1700000000000,37000.1],[1700003600000,37100.2]],"market_caps":[],"total_volumes":[]}`)
	src := &fakeSource{body: body}
	raw := &memRaw{}

	n, err := NewFetcher(src, raw, nopMetrics, applogger.Nop(), testQuery).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, body, raw.b)
}

func TestFetcherNon200WritesNothing(t *testing.T) {
	src := &fakeSource{err: &xhttp.StatusError{Code: http.StatusTooManyRequests}}
	raw := &memRaw{}

	_, err := NewFetcher(src, raw, nopMetrics, applogger.Nop(), testQuery).Run(context.Background())
	var se *xhttp.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Zero(t, raw.writes)
}

func TestFetcherRejectsUndecodableBody(t *testing.T) {
	src := &fakeSource{body: []byte(`<html>maintenance</html>`)}
	raw := &memRaw{}

	_, err := NewFetcher(src, raw, nopMetrics, applogger.Nop(), testQuery).Run(context.Background())
	assert.Error(t, err)
	assert.Zero(t, raw.writes)
}
