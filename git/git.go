// Package git reads working tree diff statistics and the current branch.
package git

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/proc"
)

// DefaultTimeout bounds a single git call.
const DefaultTimeout = 5 * time.Second

var (
	filesRE      = regexp.MustCompile(`(\d+) files? changed`)
	insertionsRE = regexp.MustCompile(`(\d+) insertions?\(\+\)`)
	deletionsRE  = regexp.MustCompile(`(\d+) deletions?\(-\)`)
)

// DiffStat returns the diff of the working tree against HEAD for the repo
// containing dir. Returns nil when dir is not inside a repository or git
// fails for any other reason.
func DiffStat(ctx context.Context, dir string) *core.GitDiff {
	out, err := gitOutput(ctx, dir, "diff", "--shortstat", "HEAD")
	if err != nil {
		log.Debug("git diff unavailable", "dir", dir, "err", err)
		return nil
	}
	return ParseShortstat(out)
}

// Branch returns the checked out branch, or "" when unknown.
func Branch(ctx context.Context, dir string) string {
	out, err := gitOutput(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil || out == "HEAD" {
		return ""
	}
	return out
}

// ParseShortstat parses `git diff --shortstat` output. Empty output means a
// clean tree and yields a zero diff.
func ParseShortstat(s string) *core.GitDiff {
	return &core.GitDiff{
		Files:      match(filesRE, s),
		Insertions: match(insertionsRE, s),
		Deletions:  match(deletionsRE, s),
	}
}

func match(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// gitOutput runs a git command in dir and returns its trimmed stdout.
func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := proc.Output(ctx, DefaultTimeout, dir, "git", args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
