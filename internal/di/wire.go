//go:build wireinject
// +build wireinject

package di

import (
	"CoinCast/internal/usecase"
	"CoinCast/pkg/config"
	"CoinCast/pkg/server"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideKafkaProducer,
	ProvideLogger,
	ProvideFileStore,
)

// InitializeFetcher wires the fetch stage.
func InitializeFetcher(cfg *config.Config) (*usecase.Fetcher, func(), error) {
	wire.Build(
		infraSet,
		ProvideMetrics,
		ProvideHTTPClient,
		ProvideMarketSource,
		ProvideRawStore,
		ProvideFetcher,
	)
	return nil, nil, nil
}

// InitializePreprocessor wires the preprocess stage.
func InitializePreprocessor(cfg *config.Config) (*usecase.Preprocessor, func(), error) {
	wire.Build(
		infraSet,
		ProvideRawStore,
		ProvideClickHouseClient,
		ProvidePreprocessor,
	)
	return nil, nil, nil
}

// InitializeTrainer wires the training stage.
func InitializeTrainer(cfg *config.Config) (*usecase.Trainer, func(), error) {
	wire.Build(
		infraSet,
		ProvideMetrics,
		ProvideArtifactStore,
		ProvideClickHouseClient,
		ProvideSeriesReader,
		ProvideModelPublisher,
		ProvideTrainer,
	)
	return nil, nil, nil
}

// InitializeApp wires up the prediction server.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		infraSet,
		ProvideMetrics,
		ProvideHTTPClient,
		ProvideMarketSource,
		ProvideArtifactStore,
		ProvidePredictor,
		ProvideCache,
		ProvideProxy,
		ProvideRoutes,
		ProvideHTTPServer,
		ProvideKafkaConsumer,
		ProvideModelEventsHandler,
		ProvideApp,
	)
	return nil, nil, nil
}
