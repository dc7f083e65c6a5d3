package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExitKind is the normalized reason a session ended.
type ExitKind string

const (
	ExitUser         ExitKind = "user"
	ExitCleared      ExitKind = "cleared"
	ExitContextLimit ExitKind = "context_limit"
	ExitAPIError     ExitKind = "api_error"
	ExitOther        ExitKind = "other"
	ExitUnknown      ExitKind = "unknown"
)

// ExitReason keeps the normalized kind alongside the reason code as received.
type ExitReason struct {
	Kind ExitKind `json:"kind"`
	Raw  string   `json:"raw,omitempty"`
}

// ParseExitReason normalizes a hook reason code.
func ParseExitReason(raw string) ExitReason {
	r := ExitReason{Raw: raw}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		r.Kind = ExitUnknown
	case "prompt_input_exit", "logout", "exit", "user":
		r.Kind = ExitUser
	case "clear":
		r.Kind = ExitCleared
	case "compact", "context_limit", "max_tokens":
		r.Kind = ExitContextLimit
	case "api_error", "error":
		r.Kind = ExitAPIError
	default:
		r.Kind = ExitOther
	}
	return r
}

func (r ExitReason) String() string {
	switch r.Kind {
	case ExitUser:
		return "user exit"
	case ExitCleared:
		return "context cleared"
	case ExitContextLimit:
		return "context limit reached"
	case ExitAPIError:
		return "API error"
	case ExitOther:
		return r.Raw
	default:
		return "unknown"
	}
}

// GitDiff is the working tree diff against HEAD.
type GitDiff struct {
	Files      int `json:"files"`
	Insertions int `json:"insertions"`
	Deletions  int `json:"deletions"`
}

// Empty reports whether the diff carries no changes.
func (d *GitDiff) Empty() bool {
	return d == nil || (d.Files == 0 && d.Insertions == 0 && d.Deletions == 0)
}

// CostSource records where a cost figure came from.
type CostSource string

const (
	CostService  CostSource = "service"
	CostEstimate CostSource = "estimate"
)

// Cost is a currency-agnostic session cost.
type Cost struct {
	Amount decimal.Decimal `json:"amount"`
	Source CostSource      `json:"source"`
}

// SavingsDelta is the session-scoped change in the rtk savings report.
type SavingsDelta struct {
	Commands    int64   `json:"commands"`
	TokensSaved int64   `json:"tokens_saved"`
	Percent     float64 `json:"percent"`
	Estimated   bool    `json:"estimated,omitempty"`
	Breakdown   string  `json:"breakdown,omitempty"`
}

// SessionInfo is what the host's session index knows about a session.
type SessionInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Branch   string `json:"branch,omitempty"`
	Messages int    `json:"messages,omitempty"`
}

// HookInput is the JSON payload a Claude Code hook receives on stdin.
type HookInput struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	CWD            string `json:"cwd"`
	HookEventName  string `json:"hook_event_name"`
	Reason         string `json:"reason"`
}

// Report bundles everything a renderer needs. Renderers must not modify it.
type Report struct {
	SessionID string
	Name      string
	Branch    string
	Dir       string
	Exit      ExitReason
	Snapshot  *Snapshot
	Cost      *Cost
	Savings   *SavingsDelta
	Diff      *GitDiff
	Config    RenderConfig
}

// Record is one entry of the history log. Records are appended and never
// modified afterwards.
type Record struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	SessionID string        `json:"session_id"`
	Name      string        `json:"session_name,omitempty"`
	Branch    string        `json:"git_branch,omitempty"`
	Dir       string        `json:"dir,omitempty"`
	Exit      ExitReason    `json:"exit_reason"`
	Cost      *Cost         `json:"cost,omitempty"`
	Diff      *GitDiff      `json:"git_diff,omitempty"`
	Savings   *SavingsDelta `json:"savings,omitempty"`
	Snapshot  *Snapshot     `json:"snapshot"`
}

// NewRecord captures r as a history record stamped with now. The record
// holds its own copy of every part of r, so transforming it leaves r intact.
func NewRecord(r *Report, now time.Time) *Record {
	return &Record{
		ID:        uuid.NewString(),
		Timestamp: now.UTC(),
		SessionID: r.SessionID,
		Name:      r.Name,
		Branch:    r.Branch,
		Dir:       r.Dir,
		Exit:      r.Exit,
		Cost:      clone(r.Cost),
		Diff:      clone(r.Diff),
		Savings:   clone(r.Savings),
		Snapshot:  r.Snapshot.Clone(),
	}
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
