package audit

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/suderio/scenario-engine/internal/world"
)

const schema = `
CREATE TABLE IF NOT EXISTS deltas (
	run_id     TEXT    NOT NULL,
	seq        INTEGER NOT NULL,
	type       TEXT    NOT NULL,
	data       TEXT    NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (run_id, seq)
);
CREATE INDEX IF NOT EXISTS deltas_created_at ON deltas (created_at);
`

// SQLiteStore keeps the deltas of many runs in one database, keyed by run id.
type SQLiteStore struct {
	db    *sql.DB
	runID string
	seq   int64
}

// OpenSQLite opens the database at path and scopes the store to runID.
// Appending to an existing run continues its sequence.
func OpenSQLite(path, runID string) (*SQLiteStore, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, fmt.Errorf("run id is required")
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db, runID: runID}
	if err := db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM deltas WHERE run_id = ?`, runID).Scan(&s.seq); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("read run sequence: %w", err)
	}
	return s, nil
}

// ListRuns returns the run ids stored in the database at path.
func ListRuns(path string) ([]string, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return queryRuns(db)
}

func openDB(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

// RunID returns the run the store is scoped to.
func (s *SQLiteStore) RunID() string { return s.runID }

// Append inserts d as the next delta of the run.
func (s *SQLiteStore) Append(d world.Delta) error {
	wrapper, err := wrapDelta(d)
	if err != nil {
		return err
	}
	next := s.seq + 1
	if _, err := s.db.Exec(
		`INSERT INTO deltas (run_id, seq, type, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.runID, next, string(wrapper.Type), string(wrapper.Data), time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert delta: %w", err)
	}
	s.seq = next
	return nil
}

// Load returns the run's deltas in order.
func (s *SQLiteStore) Load() ([]world.Delta, error) {
	rows, err := s.db.Query(`SELECT type, data FROM deltas WHERE run_id = ? ORDER BY seq`, s.runID)
	if err != nil {
		return nil, fmt.Errorf("query deltas: %w", err)
	}
	defer rows.Close()

	var deltas []world.Delta
	for rows.Next() {
		var typ, data string
		if err := rows.Scan(&typ, &data); err != nil {
			return nil, fmt.Errorf("scan delta: %w", err)
		}
		d, err := unmarshalDelta(world.DeltaType(typ), []byte(data))
		if err != nil {
			return nil, err
		}
		deltas = append(deltas, d)
	}
	return deltas, rows.Err()
}

// Runs lists the run ids stored in the database, oldest first.
func (s *SQLiteStore) Runs() ([]string, error) {
	return queryRuns(s.db)
}

func queryRuns(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT run_id FROM deltas GROUP BY run_id ORDER BY MIN(created_at), run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
