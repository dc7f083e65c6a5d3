// Package history stores one record per finished session in an append-only
// log. Plain paths use JSON Lines; paths ending in .db or .sqlite use SQLite.
package history

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/sonnes/lekha/core"
)

// Store is an append-only record log.
type Store interface {
	// Append adds one record.
	Append(ctx context.Context, r *core.Record) error

	// Recent returns up to n records, newest first. n <= 0 returns all.
	Recent(ctx context.Context, n int) ([]*core.Record, error)

	Close() error
}

// Open picks a backend from the file extension of path.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(path)
	default:
		return &JSONL{Path: path}, nil
	}
}
