package coingecko

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	xhttp "CoinCast/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketChartRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "30", r.URL.Query().Get("days"))
		assert.Equal(t, "demo-key", r.Header.Get("x-cg-demo-api-key"))
		_, _ = w.Write([]byte(`{"prices":[[1,2]]}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "demo-key", xhttp.NewClient())
	body, err := c.MarketChart(context.Background(), "bitcoin", "usd", "30")
	require.NoError(t, err)
	assert.JSONEq(t, `{"prices":[[1,2]]}`, string(body))
}

func TestMarketChartNon200(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "", xhttp.NewClient(xhttp.WithRetry(3, time.Millisecond)))
	_, err := c.MarketChart(context.Background(), "nope", "usd", "30")

	var se *xhttp.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetForwardsPathAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Empty(t, r.Header.Get("x-cg-demo-api-key"))
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":1}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", xhttp.NewClient())
	body, err := c.Get(context.Background(), "simple/price?ids=bitcoin&vs_currencies=usd")
	require.NoError(t, err)
	assert.Contains(t, string(body), "bitcoin")
}

func TestNormalizeEndpoint(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"/ping", "/ping", true},
		{"coins/list", "/coins/list", true},
		{"/simple/price?ids=a", "/simple/price?ids=a", true},
		{"", "", false},
		{"http://evil.example/x", "", false},
		{"//evil.example/x", "", false},
		{"/coins/../../etc", "", false},
		{"/coins/%2e%2e/x", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizeEndpoint(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrInvalidEndpoint, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}
