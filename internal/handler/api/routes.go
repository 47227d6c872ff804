package api

import (
	"CoinCast/pkg/http/middleware"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig configures the per-client limiter on public routes.
type RateLimitConfig struct {
	Enabled      bool
	Capacity     float64
	RefillPerSec float64
}

// Routes registers every CoinCast HTTP route.
type Routes struct {
	predict *PredictEchoHandler
	proxy   *ProxyEchoHandler
	stream  *ModelStreamHandler
	limiter middleware.Allower
	rl      RateLimitConfig
}

func NewRoutes(predict *PredictEchoHandler, proxy *ProxyEchoHandler, stream *ModelStreamHandler, limiter middleware.Allower, rl RateLimitConfig) *Routes {
	return &Routes{predict: predict, proxy: proxy, stream: stream, limiter: limiter, rl: rl}
}

func (r *Routes) RegisterRoutes(e *echo.Echo) {
	var limited []echo.MiddlewareFunc
	if r.rl.Enabled && r.limiter != nil {
		limited = append(limited, middleware.RateLimit(r.limiter, r.rl.Capacity, r.rl.RefillPerSec))
	}

	e.GET("/healthz", r.predict.Healthz)
	e.GET("/predict", r.predict.Predict, limited...)

	g := e.Group("/api")
	g.GET("/model", r.predict.Model)
	g.POST("/model/reload", r.predict.Reload)
	if r.proxy != nil {
		g.GET("/coingecko", r.proxy.CoinGecko, limited...)
	}

	if r.stream != nil {
		e.GET("/ws/model", r.stream.Stream)
	}
}
