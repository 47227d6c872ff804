package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"CoinCast/internal/di"
	"CoinCast/pkg/config"
	xhttp "CoinCast/pkg/http"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	fetcher, cleanup, err := di.InitializeFetcher(cfg)
	if err != nil {
		log.Fatalf("fetcher initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	n, err := fetcher.Run(ctx)
	stop()
	cleanup()

	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			log.Printf("failed to fetch data: status code %d", se.Code)
		} else {
			log.Printf("failed to fetch data: %v", err)
		}
		os.Exit(1)
	}
	log.Printf("saved %d prices to %s", n, cfg.Paths.RawFile)
}
