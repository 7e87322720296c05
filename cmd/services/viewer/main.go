package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/soltixdb/trendcast/internal/config"
	"github.com/soltixdb/trendcast/internal/logging"
	"github.com/soltixdb/trendcast/internal/modelstore"
	"github.com/soltixdb/trendcast/internal/queue"
	"github.com/soltixdb/trendcast/internal/router"
	"github.com/soltixdb/trendcast/internal/utils"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Viewer starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	logger.Info("Opening model store", "type", cfg.ModelStore.Type)
	store, err := modelstore.NewStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open model store", "error", err)
	}
	defer func() { _ = store.Close() }()
	cache := modelstore.NewCache(store)

	if cfg.Viewer.AuthEnabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Viewer.APIKeys))
	}

	app, h := router.New(logger, cache, cfg)

	// Model events from the trainer invalidate the cache
	logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
	queueClient, err := queue.NewQueue(cfg.Queue)
	if err != nil {
		logger.Fatal("Failed to connect to Queue", "error", err)
	}
	defer func() { _ = queueClient.Close() }()
	if err := queue.SubscribeModelTrained(queueClient, h.OnModelTrained); err != nil {
		logger.Fatal("Failed to subscribe to model events", "error", err)
	}

	// Start server in goroutine
	go func() {
		addr := cfg.GetViewerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	_ = queueClient.Unsubscribe(queue.SubjectModelTrained)
	logger.Info("Server exited", "cache", cache.Stats())
}
