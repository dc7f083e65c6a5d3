package savings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sonnes/lekha/core"
)

// Reconcile computes the session-scoped delta between a baseline report and
// the current one. It returns nil when there is no baseline or when no new
// commands ran.
func Reconcile(baseline, current string) *core.SavingsDelta {
	if strings.TrimSpace(baseline) == "" {
		return nil
	}
	b, c := Parse(baseline), Parse(current)

	commands := c.Commands - b.Commands
	if commands <= 0 {
		return nil
	}

	inputDelta := c.InputTokens - b.InputTokens
	estimated := false

	// Rounded magnitude suffixes (4.1M before and after) can hide the change
	// in the saved total, so fall back to the input/output difference and
	// finally to the global average per command.
	saved := c.TokensSaved - b.TokensSaved
	if saved <= 0 {
		saved = inputDelta - (c.OutputTokens - b.OutputTokens)
	}
	if saved <= 0 {
		saved = 0
		if c.Commands > 0 {
			saved = int64(float64(c.TokensSaved)/float64(c.Commands)*float64(commands) + 0.5)
		}
		estimated = true
	}

	var pct float64
	if estimated {
		pct = percent(c.TokensSaved, c.InputTokens)
	} else {
		pct = percent(saved, inputDelta)
	}

	return &core.SavingsDelta{
		Commands:    commands,
		TokensSaved: saved,
		Percent:     pct,
		Estimated:   estimated,
		Breakdown:   Breakdown(b.ByCommand, c.ByCommand),
	}
}

func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// Breakdown lists the commands whose run count grew, largest growth first,
// formatted as "name(delta)" and joined with ", ".
func Breakdown(before, after map[string]int64) string {
	type row struct {
		name  string
		delta int64
	}
	var rows []row
	for name, n := range after {
		if d := n - before[name]; d > 0 {
			rows = append(rows, row{name, d})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].delta != rows[j].delta {
			return rows[i].delta > rows[j].delta
		}
		return rows[i].name < rows[j].name
	})

	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = fmt.Sprintf("%s(%d)", core.Truncate(r.name, maxCommandLength), r.delta)
	}
	return strings.Join(parts, ", ")
}
