// Package savings measures what rtk saved during one session by comparing
// the `rtk gain` report captured at session start with the one at session end.
package savings

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/proc"
)

// DefaultTimeout bounds a single `rtk gain` call.
const DefaultTimeout = 5 * time.Second

// Prober returns the current savings report text.
type Prober interface {
	Gain(ctx context.Context) (string, error)
}

// Command runs `rtk gain`.
type Command struct {
	// Path is the rtk binary. Empty means "rtk" from PATH.
	Path    string
	Timeout time.Duration
}

// Gain runs `rtk gain` and returns its standard output.
func (c *Command) Gain(ctx context.Context) (string, error) {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	bin := c.Path
	if bin == "" {
		bin = "rtk"
	}
	out, err := proc.Output(ctx, timeout, "", bin, "gain")
	if err != nil {
		return "", fmt.Errorf("rtk gain: %w", err)
	}
	return string(out), nil
}

// Available reports whether rtk is on PATH.
func Available() bool {
	_, err := exec.LookPath("rtk")
	return err == nil
}

// Reconciler ties the baseline store to the probe.
type Reconciler struct {
	Store *Store
	Probe Prober
}

// Capture stores the current report as the baseline for cwd.
func (r *Reconciler) Capture(ctx context.Context, cwd string) error {
	report, err := r.Probe.Gain(ctx)
	if err != nil {
		return err
	}
	return r.Store.Save(cwd, report)
}

// Run consumes the baseline for cwd and reconciles it against a fresh report.
// The baseline is discarded whatever the outcome. Any failure yields nil.
func (r *Reconciler) Run(ctx context.Context, cwd string) *core.SavingsDelta {
	baseline, ok, err := r.Store.Take(cwd)
	if err != nil {
		log.Warn("read savings baseline", "err", err)
	}
	if !ok {
		log.Debug("no savings baseline", "cwd", cwd)
		return nil
	}

	current, err := r.Probe.Gain(ctx)
	if err != nil {
		log.Debug("savings probe failed", "err", err)
		return nil
	}
	return Reconcile(baseline, current)
}
