// Command heftsqlitebench measures bulk-insert throughput against heft's
// actual snapshot schema, so a regression in the store package's pragma set
// or insert shape shows up as a throughput number instead of only in tests.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

func main() {
	outDir := flag.String("out", ".", "Output directory for temp DB")
	rows := flag.Int("rows", 100000, "Entry rows to insert")
	batch := flag.Int("batch", 10000, "Batch size per transaction")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir error: %v\n", err)
		os.Exit(1)
	}

	dbPath := filepath.Join(*outDir, fmt.Sprintf(".heftsqlitebench-%d.db", time.Now().UnixNano()))
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db error: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		db.Close()
		os.Remove(dbPath)
	}()

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -16000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			fmt.Fprintf(os.Stderr, "pragma error: %v\n", err)
			os.Exit(1)
		}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY,
			scanned_at INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			total_bytes INTEGER NOT NULL,
			reclaimable_bytes INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY,
			snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			category TEXT NOT NULL,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			reclaimable_bytes INTEGER NOT NULL,
			age_days INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_entries_snapshot_id ON entries(snapshot_id);
	`); err != nil {
		fmt.Fprintf(os.Stderr, "schema error: %v\n", err)
		os.Exit(1)
	}

	res, err := db.Exec(`INSERT INTO snapshots (scanned_at, duration_ms, total_bytes, reclaimable_bytes) VALUES (?, ?, ?, ?)`,
		time.Now().Unix(), 0, 0, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert snapshot error: %v\n", err)
		os.Exit(1)
	}
	snapshotID, _ := res.LastInsertId()

	stmt, err := db.Prepare(`INSERT INTO entries (snapshot_id, category, name, path, size_bytes, reclaimable_bytes, age_days) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		fmt.Fprintf(os.Stderr, "prepare error: %v\n", err)
		os.Exit(1)
	}
	defer stmt.Close()

	start := time.Now()
	inserted := 0
	for inserted < *rows {
		tx, err := db.Begin()
		if err != nil {
			fmt.Fprintf(os.Stderr, "begin error: %v\n", err)
			os.Exit(1)
		}
		txStmt := tx.Stmt(stmt)
		n := *batch
		if inserted+n > *rows {
			n = *rows - inserted
		}
		for i := 0; i < n; i++ {
			path := fmt.Sprintf("/bench/node_modules/%d", inserted+i)
			_, err := txStmt.Exec(snapshotID, "project-artifacts", "node_modules", path, 1234, 1234, nil)
			if err != nil {
				tx.Rollback()
				fmt.Fprintf(os.Stderr, "insert error: %v\n", err)
				os.Exit(1)
			}
		}
		if err := tx.Commit(); err != nil {
			fmt.Fprintf(os.Stderr, "commit error: %v\n", err)
			os.Exit(1)
		}
		inserted += n
	}
	elapsed := time.Since(start)

	fmt.Printf("out=%s rows=%d batch=%d\n", *outDir, *rows, *batch)
	fmt.Printf("total: %v\n", elapsed)
	if elapsed.Seconds() > 0 {
		fmt.Printf("throughput: %.0f rows/sec\n", float64(*rows)/elapsed.Seconds())
	}
}
