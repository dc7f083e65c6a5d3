package savings

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sonnes/lekha/core"
)

// Store keeps one baseline report per working directory.
//
// A baseline is written at session start and consumed at session end. Two
// sessions ending at the same time in the same directory race for it; the
// loser sees no baseline and reports nothing.
type Store struct {
	Dir string
}

func (s *Store) path(cwd string) string {
	return filepath.Join(s.Dir, core.ProjectKey(cwd)+".txt")
}

// Save replaces the baseline for cwd. The write goes through a temporary
// file and rename so a reader never sees a partial report.
func (s *Store) Save(cwd, report string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.Dir, ".baseline-*.txt")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(report); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, s.path(cwd))
}

// Take returns the baseline for cwd and deletes it. ok is false when no
// baseline exists.
func (s *Store) Take(cwd string) (report string, ok bool, err error) {
	path := s.path(cwd)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return string(data), true, err
	}
	return string(data), true, nil
}
