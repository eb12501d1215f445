package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErasureDB manages the SQLite database holding erasure history.
// It is the per-entry record the tree eraser itself does not keep:
// the eraser only reports the final root outcome, so operators go
// here to see which nested entries failed and why.
type ErasureDB struct {
	db *sql.DB
}

// ErasureRecord represents a single recorded deletion attempt
type ErasureRecord struct {
	ID           int64
	Timestamp    time.Time
	Action       string // DELETE, DRY_RUN, SKIP, ERROR
	Root         string
	Path         string
	FileName     string
	ObjectType   string // file, directory, other
	Size         int64
	ErrorMessage string
	CreatedAt    time.Time
}

// NewErasureDB creates a new database connection and initializes schema
func NewErasureDB(dbPath string) (*ErasureDB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// A plain query both verifies the connection and forces file creation
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	// WAL allows the query tool to read while the daemon writes
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	edb := &ErasureDB{db: db}
	if err = edb.initSchema(); err != nil {
		return nil, err
	}

	err = nil
	return edb, nil
}

func (d *ErasureDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS erasures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		root TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		object_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		error_message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON erasures(timestamp);
	CREATE INDEX IF NOT EXISTS idx_action ON erasures(action);
	CREATE INDEX IF NOT EXISTS idx_root ON erasures(root);
	CREATE INDEX IF NOT EXISTS idx_path ON erasures(path);
	CREATE INDEX IF NOT EXISTS idx_size ON erasures(size);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Record inserts one deletion attempt into the history
func (d *ErasureDB) Record(action, root, path, objectType string, size int64, errMsg string) error {
	query := `
	INSERT INTO erasures (timestamp, action, root, path, file_name, object_type, size, error_message)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := d.db.Exec(
		query,
		time.Now(),
		action,
		root,
		path,
		filepath.Base(path),
		objectType,
		size,
		errMsg,
	)
	return err
}

// Close closes the database connection
func (d *ErasureDB) Close() error {
	return d.db.Close()
}

// Vacuum optimizes the database (run periodically)
func (d *ErasureDB) Vacuum() error {
	_, err := d.db.Exec("VACUUM")
	return err
}

// TotalRecords returns the number of rows in the history
func (d *ErasureDB) TotalRecords() (int64, error) {
	var total int64
	err := d.db.QueryRow("SELECT COUNT(*) FROM erasures").Scan(&total)
	return total, err
}
