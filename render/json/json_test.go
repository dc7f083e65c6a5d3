package json

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sonnes/lekha/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report() *core.Report {
	s := core.NewSnapshot()
	s.Model("claude-opus-4-6").Add(core.ModelUsage{Requests: 1, Input: 100, Output: 50})
	s.Tools["Bash"] = 2
	return &core.Report{
		SessionID: "abc-123",
		Name:      "Refactor parser",
		Branch:    "main",
		Exit:      core.ParseExitReason("clear"),
		Snapshot:  s,
		Cost:      &core.Cost{Amount: decimal.RequireFromString("0.0013"), Source: core.CostEstimate},
		Config:    core.DefaultRenderConfig(),
	}
}

func TestRender(t *testing.T) {
	now := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
	r := &Renderer{Indent: true, Now: func() time.Time { return now }}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, report()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.NotEmpty(t, got["id"])
	assert.Equal(t, "2026-02-15T10:00:00Z", got["timestamp"])
	assert.Equal(t, "abc-123", got["session_id"])
	assert.Equal(t, "Refactor parser", got["session_name"])
	assert.Equal(t, "main", got["git_branch"])
	assert.Equal(t, map[string]any{"kind": "cleared", "raw": "clear"}, got["exit_reason"])
	assert.Equal(t, map[string]any{"amount": "0.0013", "source": "estimate"}, got["cost"])
	assert.NotContains(t, got, "savings")

	snap := got["snapshot"].(map[string]any)
	assert.Equal(t, map[string]any{"Bash": float64(2)}, snap["tools"])
	assert.True(t, strings.Contains(buf.String(), "\n  \""), "indented output")
}

func TestRenderCompact(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Renderer{}).Render(&buf, report()))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}
