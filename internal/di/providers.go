package di

import (
	"context"
	"fmt"
	"time"

	"CoinCast/internal/domain/repository"
	"CoinCast/internal/handler/api"
	internalrepo "CoinCast/internal/repository"
	"CoinCast/internal/service/coingecko"
	"CoinCast/internal/service/ratelimit"
	"CoinCast/internal/usecase"
	"CoinCast/pkg/cache"
	pkgch "CoinCast/pkg/clickhouse"
	"CoinCast/pkg/config"
	xhttp "CoinCast/pkg/http"
	pkgkafka "CoinCast/pkg/kafka"
	applogger "CoinCast/pkg/logger"
	"CoinCast/pkg/metrics"
	"CoinCast/pkg/server"
)

func noop() {}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, noop, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideLogger builds the application logger. Error logs are aggregated to
// kafka.logs_topic when a producer is available.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, func(), error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, nil, err
	}
	if producer == nil || cfg.Kafka.LogsTopic == "" {
		return l, noop, nil
	}
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          cfg.Kafka.LogsTopic,
		Publisher:      producer,
	})
	return l, l.RemoveCollector, nil
}

// ProvideClickHouseClient connects and ensures the price table, or returns nil
// when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, noop, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(4, 2),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, pkgch.PriceSchema(cfg.ClickHouse.Database, cfg.ClickHouse.Table)); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New()
}

// ProvideHTTPClient creates the outbound client used against CoinGecko.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.CoinGecko.Timeout),
		xhttp.WithRetry(cfg.CoinGecko.RetryMax, cfg.CoinGecko.RetryDelay),
	)
}

func ProvideMarketSource(cfg *config.Config, hc *xhttp.Client) repository.MarketSource {
	return coingecko.New(cfg.CoinGecko.BaseURL, cfg.CoinGecko.APIKey, hc)
}

func ProvideFileStore(cfg *config.Config) *internalrepo.FileStore {
	return internalrepo.NewFileStore(cfg.Paths.RawFile, cfg.Paths.ProcessedFile, cfg.Paths.ModelFile)
}

func ProvideRawStore(fs *internalrepo.FileStore) repository.RawStore { return fs }

func ProvideArtifactStore(fs *internalrepo.FileStore) repository.ArtifactStore { return fs }

// ProvideSeriesReader picks the trainer source from train.source.
func ProvideSeriesReader(cfg *config.Config, fs *internalrepo.FileStore, ch *pkgch.Client) (repository.SeriesReader, error) {
	if cfg.Train.Source != "clickhouse" {
		return fs, nil
	}
	if ch == nil {
		return nil, fmt.Errorf("train.source clickhouse requires clickhouse.enabled")
	}
	table, err := ch.QualifiedTable(cfg.ClickHouse.Table)
	if err != nil {
		return nil, err
	}
	return internalrepo.NewClickHousePrices(ch.DB(), table), nil
}

// ProvideModelPublisher returns nil when Kafka is disabled.
func ProvideModelPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.ModelPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaModelPublisher(producer, cfg.Kafka.ModelTopic)
}

func ProvideFetcher(cfg *config.Config, source repository.MarketSource, raw repository.RawStore, m repository.Metrics, l *applogger.Logger) *usecase.Fetcher {
	return usecase.NewFetcher(source, raw, m, l, usecase.MarketQuery{
		Coin:     cfg.CoinGecko.CoinID,
		Currency: cfg.CoinGecko.VsCurrency,
		Days:     cfg.CoinGecko.Days,
	})
}

// ProvidePreprocessor writes the CSV and, when enabled, the ClickHouse table.
func ProvidePreprocessor(cfg *config.Config, raw repository.RawStore, fs *internalrepo.FileStore, ch *pkgch.Client, l *applogger.Logger) (*usecase.Preprocessor, error) {
	sinks := []repository.SeriesWriter{fs}
	if ch != nil {
		table, err := ch.QualifiedTable(cfg.ClickHouse.Table)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, internalrepo.NewClickHousePrices(ch.DB(), table))
	}
	return usecase.NewPreprocessor(raw, cfg.CoinGecko.CoinID, l, sinks...), nil
}

func ProvideTrainer(cfg *config.Config, series repository.SeriesReader, arts repository.ArtifactStore, pub repository.ModelPublisher, m repository.Metrics, l *applogger.Logger) *usecase.Trainer {
	return usecase.NewTrainer(series, arts, pub, m, l, usecase.TrainerConfig{
		Coin:     cfg.CoinGecko.CoinID,
		Currency: cfg.CoinGecko.VsCurrency,
		Limit:    cfg.Train.Limit,
	})
}

func ProvidePredictor(arts repository.ArtifactStore, m repository.Metrics, l *applogger.Logger) *usecase.Predictor {
	return usecase.NewPredictor(arts, m, l)
}

// ProvideCache builds the proxy response cache from cache.driver.
func ProvideCache(cfg *config.Config) (cache.Service, func(), error) {
	rc := cfg.Cache.Redis
	switch cfg.Cache.Driver {
	case "redis", "layered":
		r, err := cache.NewRedisCache(
			cache.WithRedisHost(rc.Host),
			cache.WithRedisPort(rc.Port),
			cache.WithRedisPassword(rc.Password),
			cache.WithRedisDB(rc.DB),
			cache.WithRedisPrefix(rc.Prefix),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		var svc cache.Service = r
		if cfg.Cache.Driver == "layered" {
			svc = cache.NewLayeredCache(r, cfg.Cache.TTL, cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize))
		}
		return svc, func() { _ = svc.Close() }, nil
	default:
		mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize))
		return mc, func() { _ = mc.Close() }, nil
	}
}

func ProvideProxy(cfg *config.Config, source repository.MarketSource, c cache.Service, m repository.Metrics, l *applogger.Logger) *usecase.CoinGeckoProxy {
	return usecase.NewCoinGeckoProxy(source, c, cfg.Cache.TTL, m, l)
}

// ProvideRoutes assembles every HTTP handler behind one xhttp.Handler.
func ProvideRoutes(cfg *config.Config, p *usecase.Predictor, proxy *usecase.CoinGeckoProxy, l *applogger.Logger) xhttp.Handler {
	rl := cfg.Server.RateLimit
	return api.NewRoutes(
		api.NewPredictEchoHandler(l, p),
		api.NewProxyEchoHandler(l, proxy),
		api.NewModelStreamHandler(l, p),
		ratelimit.New(),
		api.RateLimitConfig{Enabled: rl.Enabled, Capacity: rl.Capacity, RefillPerSec: rl.RefillPerSec},
	)
}

func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, l *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithMetrics(cfg.Metrics.Enabled),
		xhttp.WithLogger(l),
	)
}

// ProvideKafkaConsumer returns nil when Kafka is disabled. The App owns Stop.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	kc := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(kc.GroupID),
		pkgkafka.WithConsumerStartOffset("latest"),
		pkgkafka.WithConsumerWorkers(kc.Workers),
		pkgkafka.WithConsumerRetry(kc.RetryMax, kc.BackoffMin, kc.BackoffMax),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

func ProvideModelEventsHandler(cfg *config.Config, p *usecase.Predictor, m repository.Metrics, l *applogger.Logger) *usecase.ModelEventsHandler {
	return usecase.NewModelEventsHandler(cfg.Kafka.ModelTopic, p, m, l)
}

// ProvideApp creates the serving application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	p *usecase.Predictor,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh *usecase.ModelEventsHandler,
) *server.App {
	return server.New(cfg, l, p, srv, consumer, kh)
}
