package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"fightnet/config"
	"fightnet/db"
	qhttp "fightnet/http"
	"fightnet/logging"
	"fightnet/ml"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config")
	port := flag.Int("port", 0, "override http.port")
	modelPath := flag.String("model", "", "override model.path")
	logLevel := flag.String("log-level", "", "override log.level")
	flag.Parse()

	// 1. Load config
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ApplyOverrides(config.Overrides{Port: *port, ModelPath: *modelPath, LogLevel: *logLevel})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := logging.FromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Load weights once; they are never reloaded
	net, run, err := db.LoadWeights(cfg.Model.Path)
	if err != nil {
		logger.Fatal("failed to load model", zap.String("path", cfg.Model.Path), zap.Error(err))
	}
	logger.Info("model loaded",
		zap.String("path", cfg.Model.Path),
		zap.Int("epochs", run.Epochs),
		zap.Float64("final_loss", run.FinalLoss),
		zap.Time("trained_at", run.TrainedAt),
	)

	predictor, err := ml.NewCachedPredictor(net, cfg.Model.CacheSize)
	if err != nil {
		logger.Fatal("failed to create prediction cache", zap.Error(err))
	}
	qhttp.SetPredictor(predictor)

	// 3. Start HTTP server
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		AllowedOrigins: cfg.Http.AllowedOrigins,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
	}, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}
