package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *ErasureDB {
	t.Helper()
	db, err := NewErasureDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})
	return db
}

// TestDatabaseCreation verifies database file creation and initialization
func TestDatabaseCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "create.db")

	db, err := NewErasureDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file not created at %s", dbPath)
	}

	if err := db.Record("DELETE", "/tmp/x", "/tmp/x/file.txt", "file", 1024, ""); err != nil {
		t.Fatalf("Failed to record test erasure: %v", err)
	}
}

// TestWALModeEnabled verifies that WAL mode is properly configured
func TestWALModeEnabled(t *testing.T) {
	db := openTestDB(t)

	var journalMode string
	if err := db.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("Failed to query journal mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("Expected journal_mode=wal, got %s", journalMode)
	}
}

// TestSchemaCreation verifies tables and indexes are created
func TestSchemaCreation(t *testing.T) {
	db := openTestDB(t)

	var name string
	if err := db.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='erasures'").Scan(&name); err != nil {
		t.Errorf("erasures table not found: %v", err)
	}
	if err := db.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&name); err != nil {
		t.Errorf("schema_version table not found: %v", err)
	}

	var version int
	if err := db.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		t.Errorf("Failed to read schema version: %v", err)
	}
	if version != 1 {
		t.Errorf("Expected schema version 1, got %d", version)
	}

	for _, idx := range []string{"idx_timestamp", "idx_action", "idx_root", "idx_path", "idx_size"} {
		if err := db.db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&name); err != nil {
			t.Errorf("Index %s not found: %v", idx, err)
		}
	}
}

// TestRecordAndQuery verifies insertion and the query helpers
func TestRecordAndQuery(t *testing.T) {
	db := openTestDB(t)

	seed := []struct {
		action string
		root   string
		path   string
		size   int64
		errMsg string
	}{
		{"DELETE", "/scratch", "/scratch/a.log", 1024, ""},
		{"DELETE", "/scratch", "/scratch/b.log", 2048, ""},
		{"DELETE", "/spool", "/spool/big.dat", 1073741824, ""},
		{"SKIP", "/spool", "/spool", 0, "outside allowed roots"},
		{"ERROR", "/scratch", "/scratch/locked.bin", 256, "permission denied"},
	}
	for _, s := range seed {
		if err := db.Record(s.action, s.root, s.path, "file", s.size, s.errMsg); err != nil {
			t.Fatalf("Failed to insert record: %v", err)
		}
	}

	t.Run("Recent", func(t *testing.T) {
		records, err := db.Recent(3)
		if err != nil {
			t.Fatalf("Recent failed: %v", err)
		}
		if len(records) != 3 {
			t.Errorf("Expected 3 records, got %d", len(records))
		}
	})

	t.Run("ByAction", func(t *testing.T) {
		records, err := db.ByAction("DELETE")
		if err != nil {
			t.Fatalf("ByAction failed: %v", err)
		}
		if len(records) != 3 {
			t.Errorf("Expected 3 DELETE records, got %d", len(records))
		}
	})

	t.Run("ByPath", func(t *testing.T) {
		records, err := db.ByPath("/scratch/%")
		if err != nil {
			t.Fatalf("ByPath failed: %v", err)
		}
		if len(records) != 3 {
			t.Errorf("Expected 3 /scratch records, got %d", len(records))
		}
	})

	t.Run("ByRoot", func(t *testing.T) {
		records, err := db.ByRoot("/spool")
		if err != nil {
			t.Fatalf("ByRoot failed: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("Expected 2 /spool records, got %d", len(records))
		}
	})

	t.Run("Largest", func(t *testing.T) {
		records, err := db.Largest(2)
		if err != nil {
			t.Fatalf("Largest failed: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("Expected 2 records, got %d", len(records))
		}
		if len(records) == 2 && records[0].Size < records[1].Size {
			t.Error("Records not sorted by size descending")
		}
	})

	t.Run("TotalBytesFreed", func(t *testing.T) {
		total, err := db.TotalBytesFreed(time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
		if err != nil {
			t.Fatalf("TotalBytesFreed failed: %v", err)
		}
		expected := int64(1024 + 2048 + 1073741824)
		if total != expected {
			t.Errorf("Expected total %d, got %d", expected, total)
		}
	})

	t.Run("CountByAction", func(t *testing.T) {
		counts, err := db.CountByAction()
		if err != nil {
			t.Fatalf("CountByAction failed: %v", err)
		}
		if counts["DELETE"] != 3 || counts["SKIP"] != 1 || counts["ERROR"] != 1 {
			t.Errorf("Unexpected counts: %v", counts)
		}
	})

	t.Run("GetStats", func(t *testing.T) {
		stats, err := db.GetStats(7)
		if err != nil {
			t.Fatalf("GetStats failed: %v", err)
		}
		if stats.TotalDeleted != 3 || stats.TotalSkipped != 1 || stats.TotalErrors != 1 {
			t.Errorf("Unexpected stats: %+v", stats)
		}
		if stats.TotalBytesFreed <= 0 {
			t.Errorf("Expected bytes freed > 0, got %d", stats.TotalBytesFreed)
		}
	})

	t.Run("ErrorMessagePreserved", func(t *testing.T) {
		records, err := db.ByAction("ERROR")
		if err != nil {
			t.Fatalf("ByAction failed: %v", err)
		}
		if len(records) != 1 || records[0].ErrorMessage != "permission denied" {
			t.Errorf("Error message lost: %+v", records)
		}
	})
}

// TestConcurrentReadWrite verifies WAL allows a writer alongside readers
func TestConcurrentReadWrite(t *testing.T) {
	db := openTestDB(t)

	var wg sync.WaitGroup
	errCh := make(chan error, 10)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			path := fmt.Sprintf("/scratch/w%d.tmp", i)
			if err := db.Record("DELETE", "/scratch", path, "file", 512, ""); err != nil {
				errCh <- fmt.Errorf("writer: %v", err)
				return
			}
		}
	}()

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := db.Recent(10); err != nil {
					errCh <- fmt.Errorf("reader %d: %v", id, err)
					return
				}
			}
		}(i)
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("Concurrent access error: %v", err)
	}
}

// TestDeleteOldRecordsAndVacuum verifies history pruning
func TestDeleteOldRecordsAndVacuum(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 20; i++ {
		if err := db.Record("DELETE", "/scratch", fmt.Sprintf("/scratch/f%d", i), "file", 128, ""); err != nil {
			t.Fatalf("Failed to insert: %v", err)
		}
	}

	// All records are fresh, pruning at 30 days removes nothing
	deleted, err := db.DeleteOldRecords(30)
	if err != nil {
		t.Fatalf("DeleteOldRecords failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Expected 0 pruned records, got %d", deleted)
	}

	if err := db.Vacuum(); err != nil {
		t.Fatalf("Vacuum failed: %v", err)
	}

	total, err := db.TotalRecords()
	if err != nil {
		t.Fatalf("TotalRecords failed: %v", err)
	}
	if total != 20 {
		t.Errorf("Expected 20 records after vacuum, got %d", total)
	}
}

// TestInvalidPath verifies error conditions are surfaced
func TestInvalidPath(t *testing.T) {
	if _, err := NewErasureDB("/dev/null/invalid/path/db.sqlite"); err == nil {
		t.Error("Expected error for invalid database path")
	}
}
