package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"CoinCast/internal/domain/models"
	"CoinCast/internal/repository"
	"CoinCast/internal/service/coingecko"
	"CoinCast/internal/service/ratelimit"
	"CoinCast/internal/usecase"
	"CoinCast/pkg/cache"
	xhttp "CoinCast/pkg/http"
	xlogger "CoinCast/pkg/logger"
	"CoinCast/pkg/metrics"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	e         *echo.Echo
	store     *repository.FileStore
	predictor *usecase.Predictor
	upstream  *httptest.Server
	hits      int
}

func testModel() *models.Model {
	return &models.Model{
		Version:   models.ModelVersion,
		Feature:   models.FeatureRowIndex,
		Slope:     2,
		Intercept: 5,
		OriginMs:  1_700_000_000_000,
		StepMs:    3_600_000,
		Samples:   24,
		Coin:      "bitcoin",
		Currency:  "usd",
	}
}

func newFixture(t *testing.T, rl RateLimitConfig) *fixture {
	t.Helper()
	f := &fixture{}

	f.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits++
		switch r.URL.Path {
		case "/ping":
			_, _ = w.Write([]byte(`{"gecko_says":"(V3) To the Moon!"}`))
		case "/limited":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.upstream.Close)

	dir := t.TempDir()
	f.store = repository.NewFileStore(filepath.Join(dir, "raw.json"), filepath.Join(dir, "p.csv"), filepath.Join(dir, "model.json"))

	log := xlogger.Nop()
	m := metrics.Nop{}
	f.predictor = usecase.NewPredictor(f.store, m, log)

	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	source := coingecko.New(f.upstream.URL, "", xhttp.NewClient())
	proxy := usecase.NewCoinGeckoProxy(source, mc, time.Minute, m, log)

	f.e = echo.New()
	NewRoutes(
		NewPredictEchoHandler(log, f.predictor),
		NewProxyEchoHandler(log, proxy),
		NewModelStreamHandler(log, f.predictor),
		ratelimit.New(),
		rl,
	).RegisterRoutes(f.e)
	return f
}

func (f *fixture) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestPredictEchoesTimestamp(t *testing.T) {
	f := newFixture(t, RateLimitConfig{})
	require.NoError(t, f.predictor.Install(testModel()))

	rec := f.do(http.MethodGet, "/predict?timestamp=1700036000000")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "1700036000000", jsonField(t, rec.Body.Bytes(), "timestamp"))

	var body models.PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 25, body.PredictedPrice, 1e-9)
}

func jsonField(t *testing.T, b []byte, key string) string {
	t.Helper()
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &raw))
	return string(raw[key])
}

func TestPredictValidation(t *testing.T) {
	f := newFixture(t, RateLimitConfig{})
	require.NoError(t, f.predictor.Install(testModel()))

	for _, target := range []string{"/predict", "/predict?timestamp=abc", "/predict?timestamp=1.5", "/predict?timestamp=99999999999999999999"} {
		rec := f.do(http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)

		var env xhttp.APIResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), target)
		assert.Equal(t, http.StatusBadRequest, env.Status, target)
		assert.NotNil(t, env.Data, target)
	}
}

func TestPredictAcceptsSignedTimestamps(t *testing.T) {
	f := newFixture(t, RateLimitConfig{})
	require.NoError(t, f.predictor.Install(testModel()))

	cases := []struct {
		query string
		echo  string
		price float64
	}{
		// -86400 s is 1969-12-31; far before the origin, so the index is negative.
		{query: "-86400", echo: "-86400", price: 5 + 2*(float64(-86_400_000)-1.7e12)/3_600_000},
		{query: "+1700036000", echo: "1700036000", price: 25},
		{query: "0", echo: "0", price: 5 + 2*(-1.7e12)/3_600_000},
	}
	for _, tc := range cases {
		rec := f.do(http.MethodGet, "/predict?timestamp="+url.QueryEscape(tc.query))
		require.Equal(t, http.StatusOK, rec.Code, tc.query)
		assert.Equal(t, tc.echo, jsonField(t, rec.Body.Bytes(), "timestamp"), tc.query)

		var body models.PredictResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.InDelta(t, tc.price, body.PredictedPrice, 1e-6, tc.query)
	}
}

func TestPredictValidationMessages(t *testing.T) {
	f := newFixture(t, RateLimitConfig{})
	require.NoError(t, f.predictor.Install(testModel()))

	for target, want := range map[string]string{
		"/predict?timestamp=abc":                  "timestamp must be an integer",
		"/predict?timestamp=99999999999999999999": "timestamp is out of range",
	} {
		rec := f.do(http.MethodGet, target)
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), want, target)
	}
}

func TestPredictWithoutModel(t *testing.T) {
	f := newFixture(t, RateLimitConfig{})
	rec := f.do(http.MethodGet, "/predict?timestamp=1")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPredictRateLimited(t *testing.T) {
	f := newFixture(t, RateLimitConfig{Enabled: true, Capacity: 2, RefillPerSec: 0.01})
	require.NoError(t, f.predictor.Install(testModel()))

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/predict?timestamp=1").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/predict?timestamp=1").Code)
	rec := f.do(http.MethodGet, "/predict?timestamp=1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// unlimited routes are unaffected
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/healthz").Code)
}

func TestModelAndReload(t *testing.T) {
	f := newFixture(t, RateLimitConfig{})

	assert.Equal(t, http.StatusServiceUnavailable, f.do(http.MethodGet, "/api/model").Code)
	assert.Equal(t, http.StatusInternalServerError, f.do(http.MethodPost, "/api/model/reload").Code)

	require.NoError(t, f.store.SaveModel(context.Background(), testModel()))
	rec := f.do(http.MethodPost, "/api/model/reload")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/model")
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Status int          `json:"status"`
		Data   models.Model `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 2.0, env.Data.Slope)
	assert.Equal(t, "bitcoin", env.Data.Coin)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, RateLimitConfig{})
	rec := f.do(http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCoinGeckoProxy(t *testing.T) {
	f := newFixture(t, RateLimitConfig{})

	rec := f.do(http.MethodGet, "/api/coingecko?endpoint=/ping")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "Moon")

	rec = f.do(http.MethodGet, "/api/coingecko?endpoint=ping")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, 1, f.hits)
}

func TestCoinGeckoProxyErrors(t *testing.T) {
	f := newFixture(t, RateLimitConfig{})

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/coingecko").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/coingecko?endpoint=http://evil.example").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/coingecko?endpoint=/a/../../b").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/coingecko?endpoint=/missing").Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(http.MethodGet, "/api/coingecko?endpoint=/limited").Code)
}

func TestModelStream(t *testing.T) {
	f := newFixture(t, RateLimitConfig{})
	require.NoError(t, f.predictor.Install(testModel()))

	srv := httptest.NewServer(f.e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/model"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame modelFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "model.current", frame.Type)
	assert.Equal(t, 2.0, frame.Model.Slope)

	next := testModel()
	next.Slope = 4
	require.NoError(t, f.predictor.Install(next))

	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, models.EventModelTrained, frame.Type)
	assert.Equal(t, 4.0, frame.Model.Slope)
}
