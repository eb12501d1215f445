package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"tree-reaper/internal/config"
	"tree-reaper/internal/database"
	"tree-reaper/internal/exitcodes"
	"tree-reaper/internal/logging"
	"tree-reaper/internal/metrics"
	"tree-reaper/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "/etc/tree-reaper/config.yaml", "Path to configuration file")
	dryRun := flag.Bool("dry-run", false, "Report what would be erased without deleting")
	once := flag.Bool("once", false, "Run one erase cycle and exit (no loop)")
	flag.Parse()

	logger := logging.New()

	logger.Println("Tree Reaper Daemon Starting...")
	logger.Printf("Config file: %s", *configPath)
	if *dryRun {
		logger.Println("DRY RUN MODE: No files will be deleted")
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Printf("ERROR: Failed to load config: %v", err)
		os.Exit(exitcodes.InvalidConfig)
	}

	// Rebuild the logger once rotation settings are known
	logger = logging.NewWithConfig(cfg)

	// Initialize metrics (Prometheus)
	metrics.Init()
	if cfg.Prometheus.Port > 0 {
		addr := cfg.PrometheusAddress()
		logger.Printf("Starting Prometheus metrics on %s", addr)
		metrics.StartServer(addr, logger)
	}

	// Initialize database for erasure history
	var db *database.ErasureDB
	if cfg.DatabasePath != "" {
		logger.Printf("Opening erasure database: %s", cfg.DatabasePath)
		db, err = database.NewErasureDB(cfg.DatabasePath)
		if err != nil {
			logger.Printf("ERROR: Failed to open database: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: Failed to close database: %v", err)
			}
		}()
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	// Run scheduler
	logger.Println("Starting erase scheduler...")
	if *once {
		if err := scheduler.RunOnce(ctx, cfg, *dryRun, logger, db); err != nil {
			logger.Printf("ERROR: Erase cycle failed: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		logger.Println("Erase cycle completed successfully")
	} else {
		if err := scheduler.Run(ctx, cfg, *dryRun, logger, db); err != nil && err != context.Canceled {
			logger.Printf("ERROR: Scheduler failed: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
	}

	metrics.Shutdown(context.Background(), logger)
	logger.Println("Tree Reaper Daemon stopped")
}
