package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"tree-reaper/internal/config"
	"tree-reaper/internal/database"
	"tree-reaper/internal/disk"
	"tree-reaper/internal/limiter"
	"tree-reaper/internal/metrics"
	"tree-reaper/internal/safety"
	"tree-reaper/internal/sweep"
)

// RunOnce executes a single erase cycle over all configured roots
func RunOnce(ctx context.Context, cfg *config.Config, dryRun bool, logger *log.Logger, db *database.ErasureDB) error {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return errors.New("nil config")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	start := time.Now()
	metrics.RecordRun()

	roots := responsiveRoots(cfg, logger)
	updateFreeSpaceMetrics(roots)

	sweeper := sweep.NewSweeper(logger, dryRun, recorder(db))
	sweeper.SetPolicy(safety.NewPolicy(cfg.Roots, cfg.ProtectedPaths))
	if cfg.ResourceLimits.MaxCPUPercent > 0 {
		sweeper.SetLimiter(limiter.NewCPULimiter(cfg.ResourceLimits.MaxCPUPercent))
	}

	cycleCfg := *cfg
	cycleCfg.Roots = roots
	count, freed, err := sweeper.Sweep(&cycleCfg)
	if err != nil {
		metrics.ErrorsTotal.Inc()
		return err
	}

	elapsed := time.Since(start).Seconds()
	metrics.EraseDuration.Observe(elapsed)

	logger.Printf("cycle complete: deleted=%d freed=%d bytes duration=%.3fs", count, freed, elapsed)
	return nil
}

// Run executes cycles on the configured interval until the context is
// canceled. The metrics /trigger endpoint forces an immediate cycle.
func Run(ctx context.Context, cfg *config.Config, dryRun bool, logger *log.Logger, db *database.ErasureDB) error {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return errors.New("nil config")
	}

	if err := RunOnce(ctx, cfg, dryRun, logger, db); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Println("scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := RunOnce(ctx, cfg, dryRun, logger, db); err != nil {
				logger.Printf("error running cycle: %v", err)
			}
		case <-metrics.Trigger():
			logger.Println("cycle triggered via metrics endpoint")
			if err := RunOnce(ctx, cfg, dryRun, logger, db); err != nil {
				logger.Printf("error running triggered cycle: %v", err)
			}
		}
	}
}

// responsiveRoots filters out roots sitting on stale mounts so a hung
// network filesystem cannot wedge the whole cycle
func responsiveRoots(cfg *config.Config, logger *log.Logger) []string {
	roots := make([]string, 0, len(cfg.Roots))
	for _, root := range cfg.Roots {
		if !disk.Responsive(root, cfg.MountTimeout()) {
			logger.Printf("skipping unresponsive root %s", root)
			metrics.ErrorsTotal.Inc()
			continue
		}
		roots = append(roots, root)
	}
	return roots
}

func updateFreeSpaceMetrics(roots []string) {
	for _, root := range roots {
		if free, err := disk.FreePercent(root); err == nil {
			metrics.FreeSpacePercent.WithLabelValues(root).Set(free)
		}
	}
}

// recorder converts a possibly-nil *ErasureDB into a sweep.Recorder
// without handing sweep a non-nil interface wrapping a nil pointer
func recorder(db *database.ErasureDB) sweep.Recorder {
	if db == nil {
		return nil
	}
	return db
}
