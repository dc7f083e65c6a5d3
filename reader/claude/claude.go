// Package claude reads Claude Code session logs (JSONL in ~/.claude/projects/).
package claude

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/sonnes/lekha/core"
)

// Reader reads Claude Code JSONL session files.
type Reader struct {
	// Dir overrides the default session directory (~/.claude/projects/).
	Dir string
}

// ErrNotFound is returned when no transcript exists for a session.
var ErrNotFound = errors.New("session not found")

// ReadFile folds a single Claude Code JSONL session file. A missing file is
// the normal "no data yet" case and yields an empty Snapshot.
func (r *Reader) ReadFile(path string, f core.Features) (*core.Snapshot, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("transcript not found", "path", path)
		return core.NewSnapshot(), nil
	}
	if err != nil {
		return core.NewSnapshot(), fmt.Errorf("open session file: %w", err)
	}
	defer file.Close()

	snap, err := Aggregate(file, f)
	if err != nil {
		return snap, fmt.Errorf("scan session file: %w", err)
	}
	return snap, nil
}

// ResolveTranscript returns hint when it names an existing file, otherwise
// searches every project directory for <sessionID>.jsonl.
func (r *Reader) ResolveTranscript(sessionID, hint string) (string, error) {
	if hint != "" {
		if _, err := os.Stat(hint); err == nil {
			return hint, nil
		}
		log.Debug("transcript hint missing", "path", hint)
	}
	if sessionID == "" {
		return "", ErrNotFound
	}

	dir := r.dir()
	projectDirs, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read projects directory: %w", err)
	}

	fileName := sessionID + ".jsonl"
	for _, d := range projectDirs {
		if !d.IsDir() {
			continue
		}
		path := filepath.Join(dir, d.Name(), fileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
}

func (r *Reader) dir() string {
	if r.Dir != "" {
		return r.Dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "projects")
}
