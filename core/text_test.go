package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelativeTime(t *testing.T) {
	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"just now", 30 * time.Second, "just now"},
		{"minutes", 5 * time.Minute, "5m ago"},
		{"hours", 3 * time.Hour, "3h ago"},
		{"days", 2 * 24 * time.Hour, "2d ago"},
		{"weeks", 14 * 24 * time.Hour, "2w ago"},
		{"months", 60 * 24 * time.Hour, "2mo ago"},
		{"years", 400 * 24 * time.Hour, "1y ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := time.Now().Add(-tt.ago)
			assert.Equal(t, tt.want, RelativeTime(ts))
		})
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"hello", 1},
		{"hello\n", 1},
		{"a\nb\n", 2},
		{"a\nb\nc", 3},
		{"\n", 1},
		{"\n\n", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CountLines(tt.input), "CountLines(%q)", tt.input)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"cut", "abcdefgh", 5, "abcde..."},
		{"runes", "héllo wörld", 5, "héllo..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
		})
	}
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "exit status 1: no such file", CollapseSpace("  exit status 1:\n\tno   such file \n"))
	assert.Equal(t, "", CollapseSpace(" \n "))
}

func TestProjectKey(t *testing.T) {
	assert.Equal(t, "-Users-me-src-app", ProjectKey("/Users/me/src/app"))
}

func TestStringVal(t *testing.T) {
	m := map[string]any{"file_path": "/a.go", "count": 3}
	assert.Equal(t, "/a.go", StringVal(m, "file_path"))
	assert.Equal(t, "", StringVal(m, "count"))
	assert.Equal(t, "", StringVal(m, "missing"))
	assert.Equal(t, "", StringVal(nil, "file_path"))
}
