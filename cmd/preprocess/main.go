package main

import (
	"context"
	"flag"
	"log"
	"os"

	"CoinCast/internal/di"
	"CoinCast/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	pre, cleanup, err := di.InitializePreprocessor(cfg)
	if err != nil {
		log.Fatalf("preprocessor initialization failed: %v", err)
	}

	n, err := pre.Run(context.Background())
	cleanup()
	if err != nil {
		log.Printf("preprocess failed: %v", err)
		os.Exit(1)
	}
	log.Printf("wrote %d rows to %s", n, cfg.Paths.ProcessedFile)
}
