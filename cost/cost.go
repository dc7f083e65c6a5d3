// Package cost estimates what a session cost, asking ccusage first and
// falling back to a static price table.
package cost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/proc"
)

// DefaultTimeout bounds a single accounting query.
const DefaultTimeout = 10 * time.Second

// Accountant reports the billed cost of a session.
type Accountant interface {
	SessionCost(ctx context.Context, sessionID string) (decimal.Decimal, error)
}

// Command queries `ccusage session --id <id> --json`.
type Command struct {
	// Path is the ccusage binary. Empty means "ccusage" from PATH.
	Path    string
	Timeout time.Duration
}

type ccusageSession struct {
	TotalCost *float64 `json:"totalCost"`
}

// SessionCost runs ccusage for one session. A missing binary, a timeout, a
// non-zero exit or output without a total are all errors.
func (c *Command) SessionCost(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	bin := c.Path
	if bin == "" {
		bin = "ccusage"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return decimal.Zero, err
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	out, err := proc.Output(ctx, timeout, "", bin, "session", "--id", sessionID, "--json")
	if err != nil {
		return decimal.Zero, fmt.Errorf("ccusage: %w", err)
	}
	return parseSessionCost(out)
}

func parseSessionCost(out []byte) (decimal.Decimal, error) {
	var s ccusageSession
	if err := json.Unmarshal(out, &s); err != nil {
		return decimal.Zero, fmt.Errorf("parse ccusage output: %w", err)
	}
	if s.TotalCost == nil {
		return decimal.Zero, errors.New("ccusage output has no totalCost")
	}
	return decimal.NewFromFloat(*s.TotalCost), nil
}

// Estimator produces a session cost.
type Estimator struct {
	// Service is consulted first when set.
	Service Accountant
}

// Cost prefers the accounting service and falls back to the static table.
func (e *Estimator) Cost(ctx context.Context, sessionID string, models map[string]*core.ModelUsage) *core.Cost {
	if e.Service != nil && sessionID != "" {
		amount, err := e.Service.SessionCost(ctx, sessionID)
		if err == nil {
			return &core.Cost{Amount: amount, Source: core.CostService}
		}
		log.Debug("cost service unavailable", "err", err)
	}
	return &core.Cost{Amount: Estimate(models), Source: core.CostEstimate}
}
