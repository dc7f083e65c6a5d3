package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sonnes/lekha/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string, ts time.Time) *core.Record {
	snap := core.NewSnapshot()
	snap.Tools["Read"] = 3
	snap.Model("claude-sonnet-4-5").Add(core.ModelUsage{Requests: 2, Input: 5000, Output: 2000})
	return &core.Record{
		ID:        id,
		Timestamp: ts,
		SessionID: "sess-" + id,
		Name:      "Session " + id,
		Exit:      core.ParseExitReason("clear"),
		Cost:      &core.Cost{Amount: decimal.RequireFromString("0.045"), Source: core.CostEstimate},
		Diff:      &core.GitDiff{Files: 2, Insertions: 10, Deletions: 3},
		Snapshot:  snap,
	}
}

// backends runs fn against each store implementation.
func backends(t *testing.T, fn func(t *testing.T, path string)) {
	for _, name := range []string{"history.jsonl", "history.db"} {
		t.Run(name, func(t *testing.T) {
			fn(t, filepath.Join(t.TempDir(), "nested", name))
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(filepath.Join(dir, "h.jsonl"))
	require.NoError(t, err)
	assert.IsType(t, &JSONL{}, s)
	require.NoError(t, s.Close())

	s, err = Open(filepath.Join(dir, "h.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())
}

func TestRoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, path string) {
		ctx := context.Background()
		s, err := Open(path)
		require.NoError(t, err)
		defer s.Close()

		now := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
		require.NoError(t, s.Append(ctx, record("abc", now)))

		got, err := s.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)

		r := got[0]
		assert.Equal(t, "abc", r.ID)
		assert.Equal(t, "sess-abc", r.SessionID)
		assert.True(t, now.Equal(r.Timestamp))
		assert.Equal(t, core.ExitCleared, r.Exit.Kind)
		assert.Equal(t, "0.045", r.Cost.Amount.String())
		assert.Equal(t, 3, r.Snapshot.Tools["Read"])
		assert.Equal(t, int64(5000), r.Snapshot.Models["claude-sonnet-4-5"].Input)
		assert.Equal(t, 10, r.Diff.Insertions)
	})
}

func TestRecentNewestFirst(t *testing.T) {
	backends(t, func(t *testing.T, path string) {
		ctx := context.Background()
		s, err := Open(path)
		require.NoError(t, err)
		defer s.Close()

		t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		for i, id := range []string{"a", "b", "c", "d"} {
			require.NoError(t, s.Append(ctx, record(id, t0.Add(time.Duration(i)*time.Hour))))
		}

		got, err := s.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "d", got[0].ID)
		assert.Equal(t, "c", got[1].ID)

		all, err := s.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})
}

func TestRecentEmpty(t *testing.T) {
	backends(t, func(t *testing.T, path string) {
		s, err := Open(path)
		require.NoError(t, err)
		defer s.Close()

		got, err := s.Recent(context.Background(), 5)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestJSONLAppendOnly(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.jsonl")
	s := &JSONL{Path: path}

	now := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(ctx, record("a", now)))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, s.Append(ctx, record("b", now)))
	both, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, both[:len(first)], "earlier records are never rewritten")
}

func TestJSONLSkipsMalformed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.jsonl")
	s := &JSONL{Path: path}

	now := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(ctx, record("a", now)))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{truncated\n\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, s.Append(ctx, record("b", now)))

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}
