package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"tree-reaper/internal/database"
	"tree-reaper/internal/exitcodes"
)

func main() {
	// Parse command-line flags
	dbPath := flag.String("db", "/var/lib/tree-reaper/erasures.db", "Path to erasure database")
	recent := flag.Int("recent", 0, "Show N most recent records")
	stats := flag.Bool("stats", false, "Show erasure statistics")
	action := flag.String("action", "", "Filter by action (DELETE, DRY_RUN, SKIP, ERROR)")
	pathPattern := flag.String("path", "", "Filter by path pattern (SQL LIKE syntax)")
	root := flag.String("root", "", "Filter by configured root")
	largest := flag.Int("largest", 0, "Show N largest deletions")
	days := flag.Int("days", 30, "Number of days for statistics (default: 30)")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	flag.Parse()

	// Open database
	db, err := database.NewErasureDB(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open database %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	// Handle different query modes
	switch {
	case *stats:
		showStats(db, *days, *jsonOutput)
	case *recent > 0:
		showRecent(db, *recent, *jsonOutput)
	case *action != "":
		showByAction(db, *action, *jsonOutput)
	case *pathPattern != "":
		showByPath(db, *pathPattern, *jsonOutput)
	case *root != "":
		showByRoot(db, *root, *jsonOutput)
	case *largest > 0:
		showLargest(db, *largest, *jsonOutput)
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  tree-reaper-query --recent 10           # Show 10 most recent records")
		fmt.Println("  tree-reaper-query --stats               # Show erasure statistics")
		fmt.Println("  tree-reaper-query --action ERROR        # Show failed deletions")
		fmt.Println("  tree-reaper-query --root /srv/scratch   # Show records for one root")
		fmt.Println("  tree-reaper-query --path '/srv/spool/%' # Show records from /srv/spool")
		fmt.Println("  tree-reaper-query --largest 10          # Show 10 largest deletions")
		os.Exit(exitcodes.InvalidConfig)
	}
}

func showStats(db *database.ErasureDB, days int, jsonOutput bool) {
	stats, err := db.GetStats(days)
	if err != nil {
		log.Fatalf("ERROR: Failed to get statistics: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Erasure Statistics (Last %d days)\n", days)
	fmt.Printf("Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Printf("Total Deleted:  %d\n", stats.TotalDeleted)
	fmt.Printf("Total Skipped:  %d\n", stats.TotalSkipped)
	fmt.Printf("Total Errors:   %d\n", stats.TotalErrors)
	fmt.Printf("Space Freed:    %s\n\n", formatBytes(stats.TotalBytesFreed))

	if len(stats.ByAction) > 0 {
		fmt.Println("By Action:")
		for action, count := range stats.ByAction {
			fmt.Printf("  %-15s %d\n", action, count)
		}
	}
}

func showRecent(db *database.ErasureDB, limit int, jsonOutput bool) {
	records, err := db.Recent(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get recent records: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	printRecords(records)
}

func showByAction(db *database.ErasureDB, action string, jsonOutput bool) {
	records, err := db.ByAction(action)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by action: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Records with action: %s\n\n", action)
	printRecords(records)
}

func showByPath(db *database.ErasureDB, pathPattern string, jsonOutput bool) {
	records, err := db.ByPath(pathPattern)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by path: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Records matching path pattern: %s\n\n", pathPattern)
	printRecords(records)
}

func showByRoot(db *database.ErasureDB, root string, jsonOutput bool) {
	records, err := db.ByRoot(root)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by root: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Records under root: %s\n\n", root)
	printRecords(records)
}

func showLargest(db *database.ErasureDB, limit int, jsonOutput bool) {
	records, err := db.Largest(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get largest deletions: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Largest %d deletions:\n\n", limit)
	printRecords(records)
}

func printRecords(records []database.ErasureRecord) {
	if len(records) == 0 {
		fmt.Println("No records found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTimestamp\tAction\tType\tSize\tPath")
	_, _ = fmt.Fprintln(w, "--\t---------\t------\t----\t----\t----")

	for _, r := range records {
		timestamp := r.Timestamp.Format("2006-01-02 15:04:05")
		size := formatBytes(r.Size)
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, timestamp, r.Action, r.ObjectType, size, r.Path)
	}
	_ = w.Flush()
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
