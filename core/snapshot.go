// Package core defines the session aggregate produced by readers and consumed
// by renderers, along with the report and history record types built around it.
package core

import (
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/samber/lo"
)

// ModelUsage holds request and token counters for one model.
type ModelUsage struct {
	Requests    int64 `json:"requests"`
	Input       int64 `json:"input_tokens"`
	Output      int64 `json:"output_tokens"`
	CacheRead   int64 `json:"cache_read_tokens,omitempty"`
	CacheCreate int64 `json:"cache_create_tokens,omitempty"`
}

// Add accumulates the counts from other into u.
func (u *ModelUsage) Add(other ModelUsage) {
	u.Requests += other.Requests
	u.Input += other.Input
	u.Output += other.Output
	u.CacheRead += other.CacheRead
	u.CacheCreate += other.CacheCreate
}

// Context is the prompt size of a request: fresh input plus cached input.
func (u ModelUsage) Context() int64 {
	return u.Input + u.CacheRead
}

// ToolError is a failed tool result attributed to the tool that produced it.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
}

// Snapshot is the aggregate of one session transcript. Every counter starts
// at zero and only grows while the transcript is folded.
type Snapshot struct {
	Models map[string]*ModelUsage `json:"models"`

	Tools       map[string]int `json:"tools"`
	ToolErrors  int            `json:"tool_errors"`
	ToolResults int            `json:"tool_results"` // non-error results
	Errors      []ToolError    `json:"errors,omitempty"`

	Turns    int        `json:"turns"`
	ActiveMs int64      `json:"active_ms"`
	FirstAt  *time.Time `json:"first_at,omitempty"`
	LastAt   *time.Time `json:"last_at,omitempty"`

	FilesRead    map[string]bool `json:"files_read,omitempty"`
	FilesEdited  map[string]int  `json:"files_edited,omitempty"`
	FilesCreated map[string]bool `json:"files_created,omitempty"`
	LinesAdded   int             `json:"lines_added"`
	LinesRemoved int             `json:"lines_removed"`

	MCPServers  map[string]int  `json:"mcp_servers,omitempty"`
	SubAgents   map[string]int  `json:"sub_agents,omitempty"`
	Skills      map[string]bool `json:"skills,omitempty"`
	TeamCreated bool            `json:"team_created,omitempty"`
	PlanMode    bool            `json:"plan_mode,omitempty"`

	Prompts        int    `json:"prompts"`
	ThinkingBlocks int    `json:"thinking_blocks,omitempty"`
	PeakContext    int64  `json:"peak_context,omitempty"`
	GitBranch      string `json:"git_branch,omitempty"`
}

// NewSnapshot returns an empty Snapshot with all maps allocated.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Models:       make(map[string]*ModelUsage),
		Tools:        make(map[string]int),
		FilesRead:    make(map[string]bool),
		FilesEdited:  make(map[string]int),
		FilesCreated: make(map[string]bool),
		MCPServers:   make(map[string]int),
		SubAgents:    make(map[string]int),
		Skills:       make(map[string]bool),
	}
}

// Clone returns a deep copy of s. A nil Snapshot clones to nil.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Models = make(map[string]*ModelUsage, len(s.Models))
	for name, u := range s.Models {
		cu := *u
		c.Models[name] = &cu
	}
	c.Tools = maps.Clone(s.Tools)
	c.Errors = slices.Clone(s.Errors)
	c.FilesRead = maps.Clone(s.FilesRead)
	c.FilesEdited = maps.Clone(s.FilesEdited)
	c.FilesCreated = maps.Clone(s.FilesCreated)
	c.MCPServers = maps.Clone(s.MCPServers)
	c.SubAgents = maps.Clone(s.SubAgents)
	c.Skills = maps.Clone(s.Skills)
	return &c
}

// Model returns the usage entry for name, creating it on first use.
func (s *Snapshot) Model(name string) *ModelUsage {
	u, ok := s.Models[name]
	if !ok {
		u = &ModelUsage{}
		s.Models[name] = u
	}
	return u
}

// Observe widens the wall-clock span to include t.
func (s *Snapshot) Observe(t time.Time) {
	if s.FirstAt == nil {
		s.FirstAt = &t
	}
	if s.LastAt == nil || t.After(*s.LastAt) {
		s.LastAt = &t
	}
}

// TotalCalls is the number of tool invocations across all tools.
func (s *Snapshot) TotalCalls() int {
	return lo.Sum(lo.Values(s.Tools))
}

// Requests is the number of API requests across all models.
func (s *Snapshot) Requests() int64 {
	return lo.SumBy(lo.Values(s.Models), func(u *ModelUsage) int64 { return u.Requests })
}

// TotalUsage sums usage across all models.
func (s *Snapshot) TotalUsage() ModelUsage {
	var total ModelUsage
	for _, u := range s.Models {
		total.Add(*u)
	}
	return total
}

// ToolOK is the number of successful tool results. It never exceeds the
// number of invocations that did not fail.
func (s *Snapshot) ToolOK() int {
	ceiling := max(s.TotalCalls()-s.ToolErrors, 0)
	return min(s.ToolResults, ceiling)
}

// WallDuration is the span between the first and last timestamps seen.
func (s *Snapshot) WallDuration() time.Duration {
	if s.FirstAt == nil || s.LastAt == nil {
		return 0
	}
	return s.LastAt.Sub(*s.FirstAt)
}

// ActiveDuration is the summed duration of assistant turns.
func (s *Snapshot) ActiveDuration() time.Duration {
	return time.Duration(s.ActiveMs) * time.Millisecond
}

// CacheHitRate is the share of prompt tokens served from cache, in [0, 1].
func (s *Snapshot) CacheHitRate() float64 {
	u := s.TotalUsage()
	denom := u.CacheRead + u.Input + u.CacheCreate
	if denom == 0 {
		return 0
	}
	return float64(u.CacheRead) / float64(denom)
}

// ReadOnlyFiles lists paths that were read but never written or edited.
func (s *Snapshot) ReadOnlyFiles() []string {
	paths := lo.Filter(lo.Keys(s.FilesRead), func(p string, _ int) bool {
		return !s.FilesCreated[p] && s.FilesEdited[p] == 0
	})
	sort.Strings(paths)
	return paths
}

// CreatedFiles lists written paths. A path that was written and also edited
// counts as edited instead.
func (s *Snapshot) CreatedFiles() []string {
	paths := lo.Filter(lo.Keys(s.FilesCreated), func(p string, _ int) bool {
		return s.FilesEdited[p] == 0
	})
	sort.Strings(paths)
	return paths
}

// Count pairs a name with a tally.
type Count struct {
	Name string
	N    int
}

// TopTools returns the n most used tools, most used first.
func (s *Snapshot) TopTools(n int) []Count {
	return Rank(s.Tools, n)
}

// TopEdits returns the n most edited paths, most edited first.
func (s *Snapshot) TopEdits(n int) []Count {
	return Rank(s.FilesEdited, n)
}

// Rank sorts m by count descending, breaking ties by name, and keeps the
// first n entries. n <= 0 keeps everything.
func Rank(m map[string]int, n int) []Count {
	counts := make([]Count, 0, len(m))
	for name, c := range m {
		counts = append(counts, Count{Name: name, N: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].N != counts[j].N {
			return counts[i].N > counts[j].N
		}
		return counts[i].Name < counts[j].Name
	})
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// HasFeatures reports whether any feature usage was detected.
func (s *Snapshot) HasFeatures() bool {
	return len(s.MCPServers) > 0 || len(s.SubAgents) > 0 || len(s.Skills) > 0 ||
		s.TeamCreated || s.PlanMode
}
