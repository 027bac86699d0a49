package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a durable Store backed by a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) a SQLite-backed store at
// path. The schema is migrated on open.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		stream      TEXT NOT NULL,
		seq         INTEGER NOT NULL,
		id          TEXT NOT NULL,
		type        TEXT NOT NULL,
		actor       TEXT,
		description TEXT,
		data        BLOB,
		time        TEXT NOT NULL,
		PRIMARY KEY (stream, seq)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append implements Store. Events of one call are written in a single
// transaction, so a failure persists nothing.
func (s *SQLiteStore) Append(ctx context.Context, stream string, events ...*Event) (uint64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	var seq uint64
	row := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM events WHERE stream = ?`, stream)
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("read stream head: %w", err)
	}

	for _, e := range events {
		seq++
		e.Seq = seq
		e.Stream = stream
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (stream, seq, id, type, actor, description, data, time)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.Stream, e.Seq, e.ID, e.Type, e.Actor, e.Description, []byte(e.Data),
			e.Time.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return 0, fmt.Errorf("insert event %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit append: %w", err)
	}
	return seq, nil
}

// Read implements Store.
func (s *SQLiteStore) Read(ctx context.Context, stream string, fromSeq uint64) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, id, type, actor, description, data, time
		 FROM events WHERE stream = ? AND seq >= ? ORDER BY seq`,
		stream, fromSeq)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		e := &Event{Stream: stream}
		var data []byte
		var ts string
		if err := rows.Scan(&e.Seq, &e.ID, &e.Type, &e.Actor, &e.Description, &data, &ts); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Data = data
		if e.Time, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse event time %q: %w", ts, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
