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

	trainer, cleanup, err := di.InitializeTrainer(cfg)
	if err != nil {
		log.Fatalf("trainer initialization failed: %v", err)
	}

	m, err := trainer.Run(context.Background())
	cleanup()
	if err != nil {
		log.Printf("training failed: %v", err)
		os.Exit(1)
	}
	log.Printf("model saved to %s: slope=%g intercept=%g r2=%.4f samples=%d",
		cfg.Paths.ModelFile, m.Slope, m.Intercept, m.R2, m.Samples)
}
