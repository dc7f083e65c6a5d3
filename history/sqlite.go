package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sonnes/lekha/core"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	ts         TEXT NOT NULL,
	session_id TEXT NOT NULL,
	data       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS records_ts ON records (ts);
`

// tsLayout has a fixed width so timestamps sort as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// SQLite keeps records in a single table, one JSON document per row.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Append inserts r as one row.
func (s *SQLite) Append(ctx context.Context, r *core.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, ts, session_id, data) VALUES (?, ?, ?, ?)`,
		r.ID, r.Timestamp.UTC().Format(tsLayout), r.SessionID, string(data))
	return err
}

// Recent returns up to n records, newest first. Rows that fail to decode
// are skipped.
func (s *SQLite) Recent(ctx context.Context, n int) ([]*core.Record, error) {
	limit := n
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM records ORDER BY ts DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*core.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r core.Record
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			continue
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }
