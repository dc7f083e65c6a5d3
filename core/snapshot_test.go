package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotTotals(t *testing.T) {
	s := NewSnapshot()
	s.Tools["Read"] = 4
	s.Tools["Edit"] = 2
	s.Tools["Bash"] = 1
	s.Model("claude-sonnet-4-5").Add(ModelUsage{Requests: 3, Input: 100, Output: 50, CacheRead: 900})
	s.Model("claude-haiku-4-5").Add(ModelUsage{Requests: 1, Input: 10, Output: 5, CacheCreate: 90})

	assert.Equal(t, 7, s.TotalCalls())
	assert.Equal(t, int64(4), s.Requests())
	assert.Equal(t, ModelUsage{Requests: 4, Input: 110, Output: 55, CacheRead: 900, CacheCreate: 90}, s.TotalUsage())
	assert.InDelta(t, 900.0/1100.0, s.CacheHitRate(), 1e-9)
}

func TestSnapshotToolOK(t *testing.T) {
	tests := []struct {
		name    string
		calls   int
		errors  int
		results int
		want    int
	}{
		{"all resolved", 5, 1, 4, 4},
		{"some unresolved", 5, 1, 2, 2},
		{"more results than calls", 2, 0, 5, 2},
		{"errors exceed calls", 1, 3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSnapshot()
			s.Tools["Bash"] = tt.calls
			s.ToolErrors = tt.errors
			s.ToolResults = tt.results
			assert.Equal(t, tt.want, s.ToolOK())
			assert.LessOrEqual(t, s.ToolOK()+min(s.ToolErrors, s.TotalCalls()), s.TotalCalls())
		})
	}
}

func TestSnapshotFilePrecedence(t *testing.T) {
	s := NewSnapshot()
	s.FilesRead["/a.go"] = true
	s.FilesRead["/b.go"] = true
	s.FilesRead["/c.go"] = true
	s.FilesCreated["/b.go"] = true
	s.FilesCreated["/d.go"] = true
	s.FilesEdited["/c.go"] = 2
	s.FilesEdited["/d.go"] = 1

	assert.Equal(t, []string{"/a.go"}, s.ReadOnlyFiles())
	assert.Equal(t, []string{"/b.go"}, s.CreatedFiles())
}

func TestSnapshotRanking(t *testing.T) {
	s := NewSnapshot()
	for i, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"} {
		s.Tools[name] = i % 4
	}
	top := s.TopTools(8)
	assert.Len(t, top, 8)
	assert.Equal(t, Count{Name: "D", N: 3}, top[0])
	assert.Equal(t, Count{Name: "H", N: 3}, top[1])
	assert.Equal(t, Count{Name: "C", N: 2}, top[2])

	s.FilesEdited["/x/main.go"] = 1
	s.FilesEdited["/x/util.go"] = 4
	edits := s.TopEdits(5)
	assert.Equal(t, "/x/util.go", edits[0].Name)
	assert.Len(t, edits, 2)
}

func TestSnapshotObserve(t *testing.T) {
	s := NewSnapshot()
	assert.Zero(t, s.WallDuration())

	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.Observe(t0.Add(time.Minute))
	s.Observe(t0.Add(5 * time.Minute))
	s.Observe(t0.Add(2 * time.Minute))

	assert.Equal(t, t0.Add(time.Minute), *s.FirstAt)
	assert.Equal(t, t0.Add(5*time.Minute), *s.LastAt)
	assert.Equal(t, 4*time.Minute, s.WallDuration())
}

func TestSnapshotHasFeatures(t *testing.T) {
	s := NewSnapshot()
	assert.False(t, s.HasFeatures())
	s.PlanMode = true
	assert.True(t, s.HasFeatures())
}
