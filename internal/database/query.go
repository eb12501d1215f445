package database

import (
	"database/sql"
	"time"
)

const recordColumns = `id, timestamp, action, root, path, file_name, object_type, size, error_message`

// Recent returns the N most recent recorded attempts
func (d *ErasureDB) Recent(limit int) ([]ErasureRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM erasures
	ORDER BY timestamp DESC
	LIMIT ?
	`
	return d.queryErasures(query, limit)
}

// ByAction returns records filtered by action type
func (d *ErasureDB) ByAction(action string) ([]ErasureRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM erasures
	WHERE action = ?
	ORDER BY timestamp DESC
	`
	return d.queryErasures(query, action)
}

// ByPath returns records matching a path pattern (SQL LIKE syntax)
func (d *ErasureDB) ByPath(pathPattern string) ([]ErasureRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM erasures
	WHERE path LIKE ?
	ORDER BY timestamp DESC
	`
	return d.queryErasures(query, pathPattern)
}

// ByRoot returns records for one configured root
func (d *ErasureDB) ByRoot(root string) ([]ErasureRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM erasures
	WHERE root = ?
	ORDER BY timestamp DESC
	`
	return d.queryErasures(query, root)
}

// Largest returns the N largest deletions by size
func (d *ErasureDB) Largest(limit int) ([]ErasureRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM erasures
	WHERE action = 'DELETE'
	ORDER BY size DESC
	LIMIT ?
	`
	return d.queryErasures(query, limit)
}

// TotalBytesFreed returns total bytes freed in a time range
func (d *ErasureDB) TotalBytesFreed(start, end time.Time) (int64, error) {
	query := `
	SELECT COALESCE(SUM(size), 0)
	FROM erasures
	WHERE action = 'DELETE' AND timestamp BETWEEN ? AND ?
	`
	var total int64
	err := d.db.QueryRow(query, start, end).Scan(&total)
	return total, err
}

// CountByAction returns count of records grouped by action
func (d *ErasureDB) CountByAction() (map[string]int, error) {
	rows, err := d.db.Query(`SELECT action, COUNT(*) FROM erasures GROUP BY action`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		counts[action] = count
	}
	return counts, rows.Err()
}

// Stats holds aggregated history statistics
type Stats struct {
	TotalDeleted    int
	TotalSkipped    int
	TotalErrors     int
	TotalBytesFreed int64
	ByAction        map[string]int
	StartDate       time.Time
	EndDate         time.Time
}

// GetStats returns comprehensive statistics for the last N days
func (d *ErasureDB) GetStats(days int) (*Stats, error) {
	since := time.Now().AddDate(0, 0, -days)
	now := time.Now()

	stats := &Stats{
		StartDate: since,
		EndDate:   now,
	}

	err := d.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN action = 'DELETE' THEN 1 END),
			COUNT(CASE WHEN action = 'SKIP' THEN 1 END),
			COUNT(CASE WHEN action = 'ERROR' THEN 1 END)
		FROM erasures
		WHERE timestamp >= ?
	`, since).Scan(&stats.TotalDeleted, &stats.TotalSkipped, &stats.TotalErrors)
	if err != nil {
		return nil, err
	}

	stats.TotalBytesFreed, err = d.TotalBytesFreed(since, now)
	if err != nil {
		return nil, err
	}

	stats.ByAction, err = d.CountByAction()
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// DeleteOldRecords removes records older than the specified days
func (d *ErasureDB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	result, err := d.db.Exec(`DELETE FROM erasures WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (d *ErasureDB) queryErasures(query string, args ...interface{}) ([]ErasureRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ErasureRecord
	for rows.Next() {
		var r ErasureRecord
		var errMsg sql.NullString

		err := rows.Scan(
			&r.ID, &r.Timestamp, &r.Action, &r.Root, &r.Path,
			&r.FileName, &r.ObjectType, &r.Size, &errMsg,
		)
		if err != nil {
			return nil, err
		}
		if errMsg.Valid {
			r.ErrorMessage = errMsg.String
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
