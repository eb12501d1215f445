package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tree-reaper/internal/config"
)

const (
	logDir  = "/var/log/tree-reaper"
	logFile = "erase.log"
)

// New creates the daemon logger with default rotation
func New() *log.Logger {
	return NewWithConfig(nil)
}

// NewWithConfig creates a logger writing to stdout and a rotated log
// file. When the file cannot be opened the logger degrades to stdout
// only rather than failing startup.
func NewWithConfig(cfg *config.Config) *log.Logger {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Printf("failed to ensure log directory %s: %v", logDir, err)
	}

	filePath := filepath.Join(logDir, logFile)

	rotateDays := 30
	if cfg != nil && cfg.Logging.RotationDays > 0 {
		rotateDays = cfg.Logging.RotationDays
	}
	rotateIfStale(filePath, rotateDays)

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("failed to open log file %s: %v", filePath, err)
		return log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)
	}

	mw := io.MultiWriter(os.Stdout, f)
	return log.New(mw, "", log.LstdFlags|log.Lmicroseconds)
}

// rotateIfStale renames the current log aside once it is older than the
// rotation window, then prunes rotated files past the same window
func rotateIfStale(logPath string, rotationDays int) {
	info, err := os.Stat(logPath)
	if err != nil {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -rotationDays)
	if !info.ModTime().Before(cutoff) {
		return
	}

	stamp := info.ModTime().Format("20060102-150405")
	if err := os.Rename(logPath, logPath+"."+stamp); err != nil {
		log.Printf("failed to rotate log file: %v", err)
		return
	}
	pruneRotated(logPath, cutoff)
}

func pruneRotated(logPath string, cutoff time.Time) {
	dir := filepath.Dir(logPath)
	base := filepath.Base(logPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), base+".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			full := filepath.Join(dir, entry.Name())
			if err := os.Remove(full); err != nil {
				log.Printf("failed to remove old log file %s: %v", full, err)
			}
		}
	}
}
