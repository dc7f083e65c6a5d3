package history

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/sonnes/lekha/core"
)

// maxRecordSize bounds one line of the log.
const maxRecordSize = 10 << 20

// JSONL appends records as single lines to a file.
type JSONL struct {
	Path string
}

// Append writes r as one line. The whole line goes out in a single write on
// a file opened with O_APPEND.
func (j *JSONL) Append(_ context.Context, r *core.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(j.Path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(j.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Recent reads the whole log and returns the last n records, newest first.
// Lines that fail to decode are skipped. A missing file has no records.
func (j *JSONL) Recent(_ context.Context, n int) ([]*core.Record, error) {
	f, err := os.Open(j.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxRecordSize)

	var records []*core.Record
	for scanner.Scan() {
		var r core.Record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			continue
		}
		records = append(records, &r)
		if n > 0 && len(records) > n {
			records = records[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	slices.Reverse(records)
	return records, nil
}

func (j *JSONL) Close() error { return nil }
