package server

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"CoinCast/internal/usecase"
	"CoinCast/pkg/config"
	xhttp "CoinCast/pkg/http"
	pkgkafka "CoinCast/pkg/kafka"
	applogger "CoinCast/pkg/logger"
)

// App encapsulates the prediction server lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	predictor  *usecase.Predictor
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
}

// New creates a new App. consumer may be nil.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	predictor *usecase.Predictor,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		predictor:  predictor,
		httpServer: httpServer,
		consumer:   consumer,
		kh:         kh,
	}
}

// Run loads the model, starts serving and blocks until ctx is cancelled,
// SIGINT/SIGTERM arrives or the HTTP server fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A server without a model has nothing to answer.
	m, err := a.predictor.Reload(ctx)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	a.log.Info("model loaded",
		applogger.String("coin", m.Coin),
		applogger.Float64("slope", m.Slope),
		applogger.Float64("intercept", m.Intercept),
		applogger.Int("samples", m.Samples),
	)

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(ctx); err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.stopConsumer()
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case runErr = <-a.httpServer.Errors():
		a.log.Error("http server error", applogger.Error(runErr))
	}
	a.shutdown()
	return runErr
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	a.stopConsumer()
	a.log.Info("shutdown complete")
}

func (a *App) stopConsumer() {
	if a.consumer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.consumer.Stop(ctx); err != nil {
		a.log.Warn("kafka consumer stop error", applogger.Error(err))
	}
}
