package claude

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sonnes/lekha/core"
)

// maxLineSize is the maximum JSONL line size (10 MB). Longer lines are
// skipped up to the next newline.
const maxLineSize = 10 << 20

// maxErrorLen caps the stored message of a failed tool result.
const maxErrorLen = 80

// syntheticModel marks locally generated assistant lines that never reached
// the API.
const syntheticModel = "<synthetic>"

// Raw JSON deserialization types. These mirror the JSONL structure on disk.

type rawEntry struct {
	Type       string     `json:"type"`
	Subtype    string     `json:"subtype"`
	Timestamp  string     `json:"timestamp"`
	GitBranch  string     `json:"gitBranch"`
	IsMeta     bool       `json:"isMeta"`
	DurationMs int64      `json:"durationMs"`
	Message    rawMessage `json:"message"`
}

type rawMessage struct {
	ID      string          `json:"id"`
	Model   string          `json:"model"`
	Content json.RawMessage `json:"content"`
	Usage   *rawUsage       `json:"usage"`
}

type rawUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
}

type rawContentBlock struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Input     any    `json:"input"`
	ToolUseID string `json:"tool_use_id"`
	Content   any    `json:"content"`
	IsError   bool   `json:"is_error"`
}

// aggregator folds transcript lines into a Snapshot, one line at a time.
type aggregator struct {
	snap *core.Snapshot
	f    core.Features

	// seen holds assistant message ids whose usage is already counted.
	// Streaming writes one line per content block, all sharing an id.
	seen map[string]bool

	// toolNames maps tool_use ids to tool names for error attribution.
	// Only populated while error detail is enabled.
	toolNames map[string]string
}

// Aggregate folds a Claude Code JSONL stream into a Snapshot in a single
// pass. Blank, undecodable and over-long lines are skipped. The returned
// Snapshot is never nil and holds everything folded before any read error.
func Aggregate(r io.Reader, f core.Features) (*core.Snapshot, error) {
	a := &aggregator{
		snap:      core.NewSnapshot(),
		f:         f,
		seen:      make(map[string]bool),
		toolNames: make(map[string]string),
	}

	br := bufio.NewReaderSize(r, 64*1024)
	var line []byte
	skipping := false
	for {
		chunk, err := br.ReadSlice('\n')
		if !skipping {
			if len(line)+len(chunk) > maxLineSize {
				log.Warn("skipping transcript line over limit", "limit", maxLineSize)
				skipping = true
				line = line[:0]
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		if !skipping {
			a.add(line)
		}
		line = line[:0]
		skipping = false

		if errors.Is(err, io.EOF) {
			return a.snap, nil
		}
		if err != nil {
			return a.snap, err
		}
	}
}

func (a *aggregator) add(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}

	var entry rawEntry
	if err := json.Unmarshal(line, &entry); err != nil {
		return
	}

	if ts, err := time.Parse(time.RFC3339Nano, entry.Timestamp); err == nil {
		a.snap.Observe(ts)
	}
	if entry.GitBranch != "" {
		a.snap.GitBranch = entry.GitBranch
	}

	switch entry.Type {
	case "assistant":
		a.assistant(entry.Message)
	case "user":
		a.user(entry)
	case "system":
		if entry.Subtype == "turn_duration" {
			a.snap.Turns++
			a.snap.ActiveMs += entry.DurationMs
		}
	}
}

func (a *aggregator) assistant(msg rawMessage) {
	if msg.Usage != nil && msg.Model != syntheticModel && !a.seen[msg.ID] {
		if msg.ID != "" {
			a.seen[msg.ID] = true
		}
		model := msg.Model
		if model == "" {
			model = "unknown"
		}
		usage := core.ModelUsage{
			Requests:    1,
			Input:       msg.Usage.InputTokens,
			Output:      msg.Usage.OutputTokens,
			CacheRead:   msg.Usage.CacheReadInputTokens,
			CacheCreate: msg.Usage.CacheCreationInputTokens,
		}
		a.snap.Model(model).Add(usage)
		if a.f.PeakContext {
			a.snap.PeakContext = max(a.snap.PeakContext, usage.Context())
		}
	}

	for _, b := range decodeBlocks(msg.Content) {
		switch b.Type {
		case "tool_use":
			a.toolUse(b)
		case "thinking", "redacted_thinking":
			if a.f.Thinking {
				a.snap.ThinkingBlocks++
			}
		}
	}
}

func (a *aggregator) user(entry rawEntry) {
	content := entry.Message.Content
	if text, ok := decodeString(content); ok {
		if !entry.IsMeta && core.CleanUserText(text) != "" {
			a.snap.Prompts++
		}
		return
	}

	prompt := false
	for _, b := range decodeBlocks(content) {
		switch b.Type {
		case "text":
			if core.CleanUserText(b.Text) != "" {
				prompt = true
			}
		case "tool_result":
			a.toolResult(b)
		}
	}
	if prompt && !entry.IsMeta {
		a.snap.Prompts++
	}
}

func (a *aggregator) toolUse(b rawContentBlock) {
	name := b.Name
	if name == "" {
		name = "unknown"
	}
	s := a.snap
	s.Tools[name]++

	if a.f.ErrorDetail && b.ID != "" {
		a.toolNames[b.ID] = name
	}

	input, _ := b.Input.(map[string]any)
	path := core.StringVal(input, "file_path")

	switch name {
	case "Read":
		if path != "" {
			s.FilesRead[path] = true
		}
	case "Write":
		if path != "" {
			s.FilesCreated[path] = true
		}
		if a.f.LOC {
			s.LinesAdded += core.CountLines(core.StringVal(input, "content"))
		}
	case "Edit":
		if path != "" {
			s.FilesEdited[path]++
		}
		if a.f.LOC {
			a.countEdit(input)
		}
	case "MultiEdit":
		if path != "" {
			s.FilesEdited[path]++
		}
		if a.f.LOC {
			edits, _ := input["edits"].([]any)
			for _, e := range edits {
				if m, ok := e.(map[string]any); ok {
					a.countEdit(m)
				}
			}
		}
	}

	if a.f.FeatureUsage {
		a.feature(name, input)
	}
}

func (a *aggregator) countEdit(input map[string]any) {
	a.snap.LinesRemoved += core.CountLines(core.StringVal(input, "old_string"))
	a.snap.LinesAdded += core.CountLines(core.StringVal(input, "new_string"))
}

// mcpPrefix marks tools served by an MCP server: mcp__<server>__<tool>.
const mcpPrefix = "mcp__"

func (a *aggregator) feature(name string, input map[string]any) {
	s := a.snap
	switch {
	case strings.HasPrefix(name, mcpPrefix):
		server := strings.TrimPrefix(name, mcpPrefix)
		if i := strings.Index(server, "__"); i >= 0 {
			server = server[:i]
		}
		if server != "" {
			s.MCPServers[server]++
		}
	case name == "Task":
		agent := core.StringVal(input, "subagent_type")
		if agent == "" {
			agent = "unknown"
		}
		s.SubAgents[agent]++
	case name == "Skill":
		if skill := core.StringVal(input, "skill"); skill != "" {
			s.Skills[skill] = true
		}
	case name == "TeamCreate":
		s.TeamCreated = true
	case name == "EnterPlanMode", name == "ExitPlanMode":
		s.PlanMode = true
	}
}

func (a *aggregator) toolResult(b rawContentBlock) {
	if !b.IsError {
		a.snap.ToolResults++
		return
	}
	a.snap.ToolErrors++
	if !a.f.ErrorDetail {
		return
	}

	tool, ok := a.toolNames[b.ToolUseID]
	if !ok {
		tool = "unknown"
	}
	msg := core.Truncate(core.CollapseSpace(extractToolResultContent(b.Content)), maxErrorLen)
	a.snap.Errors = append(a.snap.Errors, core.ToolError{Tool: tool, Message: msg})
}

// decodeString reports whether raw is a JSON string and returns it.
func decodeString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// decodeBlocks decodes a content array, skipping blocks that fail to decode.
func decodeBlocks(raw json.RawMessage) []rawContentBlock {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	blocks := make([]rawContentBlock, 0, len(items))
	for _, item := range items {
		var b rawContentBlock
		if err := json.Unmarshal(item, &b); err != nil {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// extractToolResultContent handles tool_result content which can be a string
// or an array of {"type":"text","text":"..."} objects.
func extractToolResultContent(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case []any:
		var parts []string
		for _, item := range c {
			if m, ok := item.(map[string]any); ok {
				if text, ok := m["text"].(string); ok {
					parts = append(parts, text)
				}
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}
