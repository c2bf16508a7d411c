package store

const snapshotsTableDDL = `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY,
	scanned_at INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	total_bytes INTEGER NOT NULL,
	reclaimable_bytes INTEGER NOT NULL
);`

const entriesTableDDL = `
CREATE TABLE IF NOT EXISTS entries (
	id INTEGER PRIMARY KEY,
	snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	category TEXT NOT NULL,
	name TEXT NOT NULL,
	path TEXT NOT NULL,
	size_bytes INTEGER NOT NULL,
	reclaimable_bytes INTEGER NOT NULL,
	age_days INTEGER
);`

const entriesSnapshotIndexDDL = `
CREATE INDEX IF NOT EXISTS idx_entries_snapshot_id ON entries(snapshot_id);`

// initSchema creates the snapshots/entries tables and the entries index if
// they do not already exist. This is the only migration path at this
// version: all three DDLs are idempotent.
func (s *Store) initSchema() error {
	for _, ddl := range []string{snapshotsTableDDL, entriesTableDDL, entriesSnapshotIndexDDL} {
		if _, err := s.db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}

// applyWritePragmas configures the connection for a command that will
// insert a snapshot, mirroring the teacher's write-pragma set.
func (s *Store) applyWritePragmas() error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -16000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

// applyReadPragmas configures the connection for report/diff/tui, which
// never write.
func (s *Store) applyReadPragmas() error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA query_only = ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}
