// Package store is the snapshot store (C8): a single-connection embedded
// relational database holding one row per scan (snapshots) and one row per
// bloat entry (entries), with cascade delete and checked numeric
// marshalling.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/heftdev/heft/internal/bloat"
	"github.com/heftdev/heft/internal/numeric"
)

// Store owns exactly one database connection for the lifetime of one
// command invocation.
type Store struct {
	db *sql.DB
}

// Snapshot is a persisted scan.
type Snapshot struct {
	ID               int64
	ScannedAt        time.Time
	DurationMs       int64
	TotalBytes       int64
	ReclaimableBytes int64
}

// StoredEntry is an entries row joined to its bloat.Entry fields.
type StoredEntry struct {
	bloat.Entry
	SnapshotID int64
}

// SaveInput is what Save persists as one transaction.
type SaveInput struct {
	ScannedAt  time.Time
	DurationMs int64
	Entries    []bloat.Entry
}

// Open opens (creating if necessary) the database file at path. write
// selects the pragma set: write pragmas for commands that persist a
// snapshot, read-only pragmas otherwise.
func Open(path string, write bool) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	if write {
		err = s.applyWritePragmas()
	} else {
		err = s.applyReadPragmas()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	return s, nil
}

// Close releases the connection.
func (s *Store) Close() error { return s.db.Close() }

// Save persists a scan and its entries in a single transaction. Totals are
// computed in one saturating pass over the entries just inserted.
func (s *Store) Save(ctx context.Context, in SaveInput) (int64, []string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var diagnostics []string
	var totalBytes, totalReclaimable uint64
	for _, e := range in.Entries {
		var ok bool
		if totalBytes, ok = addSaturating(totalBytes, e.SizeBytes); !ok {
			diagnostics = append(diagnostics, "total size exceeds the unsigned 64-bit maximum")
		}
		totalReclaimable, _ = addSaturating(totalReclaimable, e.ReclaimableBytes)
	}

	totalBytesSigned, ok := numeric.ToInt64Checked(totalBytes)
	if !ok {
		diagnostics = append(diagnostics, "total_bytes narrowed to the signed 64-bit maximum")
	}
	totalReclaimableSigned, ok := numeric.ToInt64Checked(totalReclaimable)
	if !ok {
		diagnostics = append(diagnostics, "reclaimable_bytes narrowed to the signed 64-bit maximum")
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (scanned_at, duration_ms, total_bytes, reclaimable_bytes) VALUES (?, ?, ?, ?)`,
		in.ScannedAt.Unix(), in.DurationMs, totalBytesSigned, totalReclaimableSigned)
	if err != nil {
		return 0, nil, fmt.Errorf("insert snapshot: %w", err)
	}
	snapshotID, err := res.LastInsertId()
	if err != nil {
		return 0, nil, fmt.Errorf("read snapshot id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (snapshot_id, category, name, path, size_bytes, reclaimable_bytes, age_days) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, nil, fmt.Errorf("prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range in.Entries {
		sizeSigned, ok := numeric.ToInt64Checked(e.SizeBytes)
		if !ok {
			diagnostics = append(diagnostics, fmt.Sprintf("%s: size_bytes narrowed to the signed 64-bit maximum", e.Path))
		}
		reclaimableSigned, _ := numeric.ToInt64Checked(e.ReclaimableBytes)

		var ageDays any
		if e.LastModifiedDays != nil {
			ageDays = *e.LastModifiedDays
		}

		if _, err := stmt.ExecContext(ctx, snapshotID, e.Category.String(), e.Name, e.Path, sizeSigned, reclaimableSigned, ageDays); err != nil {
			return 0, nil, fmt.Errorf("insert entry %s: %w", e.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("commit snapshot: %w", err)
	}

	return snapshotID, diagnostics, nil
}

// ListSnapshots returns all snapshots, most recent first.
func (s *Store) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, scanned_at, duration_ms, total_bytes, reclaimable_bytes FROM snapshots ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var scannedAt int64
		if err := rows.Scan(&snap.ID, &scannedAt, &snap.DurationMs, &snap.TotalBytes, &snap.ReclaimableBytes); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap.ScannedAt = time.Unix(scannedAt, 0).UTC()
		out = append(out, snap)
	}
	return out, rows.Err()
}

// GetSnapshot returns one snapshot by id.
func (s *Store) GetSnapshot(ctx context.Context, id int64) (Snapshot, error) {
	var snap Snapshot
	var scannedAt int64
	err := s.db.QueryRowContext(ctx, `SELECT id, scanned_at, duration_ms, total_bytes, reclaimable_bytes FROM snapshots WHERE id = ?`, id).
		Scan(&snap.ID, &scannedAt, &snap.DurationMs, &snap.TotalBytes, &snap.ReclaimableBytes)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot %d: %w", id, err)
	}
	snap.ScannedAt = time.Unix(scannedAt, 0).UTC()
	return snap, nil
}

// GetLatestSnapshot returns the most recently saved snapshot.
func (s *Store) GetLatestSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var scannedAt int64
	err := s.db.QueryRowContext(ctx, `SELECT id, scanned_at, duration_ms, total_bytes, reclaimable_bytes FROM snapshots ORDER BY id DESC LIMIT 1`).
		Scan(&snap.ID, &scannedAt, &snap.DurationMs, &snap.TotalBytes, &snap.ReclaimableBytes)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get latest snapshot: %w", err)
	}
	snap.ScannedAt = time.Unix(scannedAt, 0).UTC()
	return snap, nil
}

// LoadEntries returns every entry belonging to one snapshot.
func (s *Store) LoadEntries(ctx context.Context, snapshotID int64) ([]bloat.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, name, path, size_bytes, reclaimable_bytes, age_days FROM entries WHERE snapshot_id = ? ORDER BY category, name`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("load entries for snapshot %d: %w", snapshotID, err)
	}
	defer rows.Close()

	var out []bloat.Entry
	for rows.Next() {
		var catStr, name, path string
		var size, reclaimable int64
		var ageDays sql.NullInt64
		if err := rows.Scan(&catStr, &name, &path, &size, &reclaimable, &ageDays); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		cat, _ := bloat.ParseCategory(catStr)
		entry := bloat.Entry{
			Category:         cat,
			Name:             name,
			Path:             path,
			SizeBytes:        numeric.ClampNonNegative(size),
			ReclaimableBytes: numeric.ClampNonNegative(reclaimable),
		}
		if ageDays.Valid {
			v := ageDays.Int64
			entry.LastModifiedDays = &v
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// DeleteSnapshot removes a snapshot; its entries cascade-delete.
func (s *Store) DeleteSnapshot(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("snapshot %d not found", id)
	}
	return nil
}

func addSaturating(a, b uint64) (uint64, bool) {
	return numeric.AddSaturatingUint64(a, b)
}
