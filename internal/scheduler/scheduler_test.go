package scheduler

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"

	"tree-reaper/internal/config"
	"tree-reaper/internal/metrics"
)

func init() {
	metrics.Init()
}

func testConfig(root string) *config.Config {
	return &config.Config{
		Roots:               []string{root},
		IntervalMinutes:     30,
		MountTimeoutSeconds: 5,
		ResourceLimits:      config.ResourceLimits{MaxCPUPercent: 50.0},
	}
}

func TestRunOnceDryRunLeavesFilesIntact(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "keep.txt")
	if err := os.WriteFile(file, []byte("data"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	err := RunOnce(context.Background(), testConfig(root), true, log.Default(), nil)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	if _, err := os.Stat(file); err != nil {
		t.Errorf("Dry run removed %s: %v", file, err)
	}
}

func TestRunOnceErasesRootContents(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "sub", "deep"), 0755); err != nil {
		t.Fatalf("Failed to create test dirs: %v", err)
	}

	err := RunOnce(context.Background(), testConfig(root), false, log.Default(), nil)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("Root directory should survive: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty root, found %d entries", len(entries))
	}
}

func TestRunOnceNilConfig(t *testing.T) {
	if err := RunOnce(context.Background(), nil, false, log.Default(), nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestRunOnceCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunOnce(ctx, testConfig(t.TempDir()), true, log.Default(), nil)
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
