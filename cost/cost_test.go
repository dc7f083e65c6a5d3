package cost

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sonnes/lekha/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeModel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"claude-sonnet-4-5-20250929", "claude-sonnet-4-5"},
		{"claude-opus-4-6", "claude-opus-4-6"},
		{"claude-3-5-haiku-20241022", "claude-3-5-haiku"},
		{"gpt-5", "gpt-5"},
		{"model-2025", "model-2025"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeModel(tt.in))
		})
	}
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		name   string
		models map[string]*core.ModelUsage
		want   string
	}{
		{
			name: "sonnet 4.5",
			models: map[string]*core.ModelUsage{
				"claude-sonnet-4-5-20250929": {Input: 2_000_000, Output: 100_000},
			},
			want: "7.5",
		},
		{
			name: "mixed models",
			models: map[string]*core.ModelUsage{
				"claude-opus-4-6":  {Input: 1_000_000, Output: 10_000},
				"claude-haiku-4-5": {Input: 500_000, Output: 200_000},
			},
			want: "6.75",
		},
		{
			name: "unknown model is free",
			models: map[string]*core.ModelUsage{
				"mystery-model": {Input: 5_000_000, Output: 5_000_000},
			},
			want: "0",
		},
		{
			name: "rounds each model to four places",
			models: map[string]*core.ModelUsage{
				"claude-sonnet-4-5": {Input: 1, Output: 1},
			},
			want: "0",
		},
		{
			name:   "empty",
			models: map[string]*core.ModelUsage{},
			want:   "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Estimate(tt.models)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseSessionCost(t *testing.T) {
	got, err := parseSessionCost([]byte(`{"sessionId":"abc","totalCost":1.2345,"totalTokens":100}`))
	require.NoError(t, err)
	assert.Equal(t, "1.2345", got.String())

	_, err = parseSessionCost([]byte(`{"sessionId":"abc"}`))
	assert.Error(t, err)

	_, err = parseSessionCost([]byte(`not json`))
	assert.Error(t, err)
}

type fakeAccountant struct {
	amount decimal.Decimal
	err    error
}

func (f *fakeAccountant) SessionCost(context.Context, string) (decimal.Decimal, error) {
	return f.amount, f.err
}

func TestEstimatorCost(t *testing.T) {
	ctx := context.Background()
	models := map[string]*core.ModelUsage{
		"claude-sonnet-4-5-20250929": {Input: 2_000_000, Output: 100_000},
	}

	t.Run("service wins", func(t *testing.T) {
		e := &Estimator{Service: &fakeAccountant{amount: decimal.RequireFromString("3.21")}}
		c := e.Cost(ctx, "abc", models)
		assert.Equal(t, core.CostService, c.Source)
		assert.Equal(t, "3.210", c.Amount.StringFixed(3))
	})

	t.Run("service failure falls back", func(t *testing.T) {
		e := &Estimator{Service: &fakeAccountant{err: errors.New("timeout")}}
		c := e.Cost(ctx, "abc", models)
		assert.Equal(t, core.CostEstimate, c.Source)
		assert.Equal(t, "7.500", c.Amount.StringFixed(3))
	})

	t.Run("no service", func(t *testing.T) {
		e := &Estimator{}
		c := e.Cost(ctx, "abc", models)
		assert.Equal(t, core.CostEstimate, c.Source)
	})

	t.Run("missing binary is unavailable", func(t *testing.T) {
		e := &Estimator{Service: &Command{Path: "lekha-no-such-binary"}}
		c := e.Cost(ctx, "abc", models)
		assert.Equal(t, core.CostEstimate, c.Source)
	})
}

func TestCommandTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	bin := filepath.Join(t.TempDir(), "ccusage")
	script := "#!/bin/sh\nsleep 4\necho '{\"totalCost\":1}'\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	models := map[string]*core.ModelUsage{
		"claude-sonnet-4-5": {Input: 1_000_000},
	}
	e := &Estimator{Service: &Command{Path: bin, Timeout: 200 * time.Millisecond}}

	start := time.Now()
	c := e.Cost(context.Background(), "abc", models)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, core.CostEstimate, c.Source)
}

func TestCommandSessionCost(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	bin := filepath.Join(t.TempDir(), "ccusage")
	script := "#!/bin/sh\necho '{\"totalCost\":1.25}'\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	amount, err := (&Command{Path: bin}).SessionCost(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "1.25", amount.String())
}
