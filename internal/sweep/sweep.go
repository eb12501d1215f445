// Package sweep drives the tree eraser for the daemon: it checks the
// safety policy, honors dry-run, throttles, feeds metrics, and records
// every per-entry outcome to the erasure history.
package sweep

import (
	"fmt"
	"log"
	"path/filepath"

	"tree-reaper/internal/config"
	"tree-reaper/internal/erase"
	"tree-reaper/internal/fsops"
	"tree-reaper/internal/limiter"
	"tree-reaper/internal/metrics"
	"tree-reaper/internal/safety"

	"github.com/prometheus/client_golang/prometheus"
)

// Logger interface for structured logging in sweep
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// stdLogger wraps standard log.Logger to implement Logger
type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Metrics interface for sweep metrics
type Metrics interface {
	EntriesDeleted() prometheus.Counter
	BytesFreed() prometheus.Counter
	Errors() prometheus.Counter
}

// sweepMetrics wraps the global metrics to implement Metrics
type sweepMetrics struct{}

func (m *sweepMetrics) EntriesDeleted() prometheus.Counter { return metrics.EntriesDeletedTotal }
func (m *sweepMetrics) BytesFreed() prometheus.Counter     { return metrics.BytesFreedTotal }
func (m *sweepMetrics) Errors() prometheus.Counter         { return metrics.ErrorsTotal }

// Recorder persists per-entry outcomes; satisfied by *database.ErasureDB
type Recorder interface {
	Record(action, root, path, objectType string, size int64, errMsg string) error
}

// Sweeper erases configured roots with safety checks and bookkeeping
type Sweeper struct {
	logger  Logger
	metrics Metrics
	fs      fsops.Filesystem
	policy  *safety.Policy
	limiter *limiter.CPULimiter
	rec     Recorder
	dryRun  bool
}

// NewSweeper creates a Sweeper. rec may be nil when no history
// database is configured.
func NewSweeper(logger *log.Logger, dryRun bool, rec Recorder) *Sweeper {
	if logger == nil {
		logger = log.Default()
	}
	return &Sweeper{
		logger:  &stdLogger{Logger: logger},
		metrics: &sweepMetrics{},
		fs:      fsops.OSFilesystem{},
		rec:     rec,
		dryRun:  dryRun,
	}
}

// SetFilesystem swaps the filesystem, used by tests to prove dry-run
// performs zero delete syscalls
func (s *Sweeper) SetFilesystem(fsys fsops.Filesystem) {
	s.fs = fsys
}

// SetPolicy installs the delete-authorization policy
func (s *Sweeper) SetPolicy(p *safety.Policy) {
	s.policy = p
}

// SetLimiter installs CPU throttling between deletions
func (s *Sweeper) SetLimiter(l *limiter.CPULimiter) {
	s.limiter = l
}

// Sweep erases the contents of every configured root, or the roots
// themselves when remove_roots is set. Returns entries removed and
// bytes freed across all roots; per-root failures are tolerated and
// logged, they never abort the cycle.
func (s *Sweeper) Sweep(cfg *config.Config) (int, int64, error) {
	s.logger.Info("Starting sweep", "roots", len(cfg.Roots), "dry_run", s.dryRun)

	totalCount := 0
	var totalFreed int64

	for _, root := range cfg.Roots {
		if cfg.RemoveRoots {
			count, freed := s.SweepTree(root, root)
			totalCount += count
			totalFreed += freed
			continue
		}

		children, err := s.fs.ReadDir(root)
		if err != nil {
			s.logger.Error("Failed to list root", "root", root, "error", err)
			s.metrics.Errors().Inc()
			continue
		}
		for _, child := range children {
			count, freed := s.SweepTree(root, filepath.Join(root, child.Name()))
			totalCount += count
			totalFreed += freed
		}
	}

	s.logger.Info("Sweep complete",
		"entries_deleted", totalCount,
		"bytes_freed", totalFreed,
	)
	return totalCount, totalFreed, nil
}

// SweepTree erases one tree under the given root after the policy
// check. Returns entries removed and bytes freed.
func (s *Sweeper) SweepTree(root, target string) (int, int64) {
	if s.policy != nil {
		if err := s.policy.Check(target); err != nil {
			s.logger.Error("Policy blocked target", "path", target, "error", err)
			s.record("SKIP", root, erase.Result{Path: target}, err.Error())
			s.metrics.Errors().Inc()
			return 0, 0
		}
	}

	fsys := s.fs
	if s.dryRun {
		fsys = dryFilesystem{s.fs}
	}

	count := 0
	var freed int64

	er := erase.New(fsys)
	er.OnResult = func(res erase.Result) {
		if s.limiter != nil {
			s.limiter.Throttle()
		}
		s.observe(root, res, &count, &freed)
	}

	final := er.EraseTree(target)
	if final.Outcome == erase.OutcomeMissing {
		s.logger.Info("Target already gone", "path", target)
	}
	return count, freed
}

func (s *Sweeper) observe(root string, res erase.Result, count *int, freed *int64) {
	switch res.Outcome {
	case erase.OutcomeDeleted:
		action := "DELETE"
		if s.dryRun {
			action = "DRY_RUN"
			s.logger.Info("[DRY RUN] Would delete", "path", res.Path, "size", res.Size)
		}
		*count++
		*freed += res.Size
		s.record(action, root, res, "")
		s.metrics.EntriesDeleted().Inc()
		s.metrics.BytesFreed().Add(float64(res.Size))
		metrics.RecordRootDeletion(root, res.Size)
	case erase.OutcomeFailed:
		s.logger.Error("Failed to delete", "path", res.Path, "error", res.Err)
		s.record("ERROR", root, res, res.Err.Error())
		s.metrics.Errors().Inc()
	case erase.OutcomeMissing:
		// Concurrent removal between enumeration and deletion;
		// expected, not an error
	}
}

func (s *Sweeper) record(action, root string, res erase.Result, errMsg string) {
	if s.rec == nil {
		return
	}
	if err := s.rec.Record(action, root, res.Path, objectType(res), res.Size, errMsg); err != nil {
		// A broken history database must not stop the sweep
		s.logger.Error("Failed to record to database", "error", err)
	}
}

func objectType(res erase.Result) string {
	if res.IsDir {
		return "directory"
	}
	return "file"
}

// dryFilesystem reads through to the real filesystem but turns the
// delete primitive into a no-op, so a dry-run cycle traverses and
// reports exactly what a real one would delete
type dryFilesystem struct {
	fsops.Filesystem
}

func (dryFilesystem) Remove(path string) error { return nil }
