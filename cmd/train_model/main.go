package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"fightnet/config"
	"fightnet/db"
	"fightnet/logging"
	"fightnet/ml/trainer"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config (optional)")
	out := flag.String("out", "", "weights output path (default model.path)")
	epochs := flag.Int("epochs", 0, "number of epochs")
	seed := flag.Int64("seed", 0, "PRNG seed (default training.seed)")
	lr := flag.Float64("lr", 0, "Adam learning rate")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	overrides := config.Overrides{ModelPath: *out, Epochs: *epochs, LearningRate: *lr}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			overrides.Seed = seed
		}
	})
	cfg.ApplyOverrides(overrides)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := logging.FromConfig(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("training failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	trainCfg := trainer.Config{
		Epochs:       cfg.Training.Epochs,
		Samples:      cfg.Training.Samples,
		LearningRate: cfg.Training.LearningRate,
		LogEvery:     cfg.Training.LogEvery,
		Seed:         cfg.Training.Seed,
	}
	logger.Info("training started",
		zap.Int("epochs", trainCfg.Epochs),
		zap.Int("samples", trainCfg.Samples),
		zap.Float64("learning_rate", trainCfg.LearningRate),
		zap.Int64("seed", trainCfg.Seed),
	)

	result, err := trainer.Run(ctx, trainCfg, logger)
	if err != nil {
		return err
	}

	info := db.RunInfo{
		Epochs:       trainCfg.Epochs,
		Samples:      trainCfg.Samples,
		LearningRate: trainCfg.LearningRate,
		Seed:         trainCfg.Seed,
		FinalLoss:    result.FinalLoss(),
		TrainedAt:    result.TrainedAt,
	}
	if err := db.SaveWeights(cfg.Model.Path, result.Network, info); err != nil {
		return fmt.Errorf("save weights: %w", err)
	}

	logger.Info("model trained and saved",
		zap.String("path", cfg.Model.Path),
		zap.Float64("final_loss", info.FinalLoss),
		zap.Duration("duration", result.Duration),
	)
	return nil
}
