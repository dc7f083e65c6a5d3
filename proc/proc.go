// Package proc runs external tools with a hard deadline.
package proc

import (
	"context"
	"os/exec"
	"time"
)

// waitDelay is how long Output waits for stdout to close after the deadline
// has killed the process. Wrapper scripts can leave a grandchild holding the
// pipe open.
const waitDelay = 100 * time.Millisecond

// Output runs name with args in dir and returns its standard output. The
// whole call, including draining the output, returns shortly after timeout
// even when the tool has spawned children of its own. An empty dir runs in
// the current directory.
func Output(ctx context.Context, timeout time.Duration, dir, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	killGroup(cmd)

	out, err := cmd.Output()
	if err != nil && ctx.Err() != nil {
		return out, ctx.Err()
	}
	return out, err
}
