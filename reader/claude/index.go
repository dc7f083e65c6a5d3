package claude

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sonnes/lekha/core"
)

const (
	indexFileName = "sessions-index.json"
	maxNameLen    = 60
)

type sessionsIndex struct {
	Entries []indexEntry `json:"entries"`
}

type indexEntry struct {
	SessionID    string `json:"sessionId"`
	Summary      string `json:"summary"`
	FirstPrompt  string `json:"firstPrompt"`
	GitBranch    string `json:"gitBranch"`
	MessageCount int    `json:"messageCount"`
}

// LookupSession finds a session in the Claude Code session index. The index
// of cwd's project directory is consulted first, then every other project.
// Returns nil when no index mentions the session.
func (r *Reader) LookupSession(sessionID, cwd string) (*core.SessionInfo, error) {
	if sessionID == "" {
		return nil, nil
	}
	dir := r.dir()

	var primary string
	if cwd != "" {
		primary = core.ProjectKey(cwd)
		if info, err := lookupIndex(filepath.Join(dir, primary, indexFileName), sessionID); info != nil || err != nil {
			return info, err
		}
	}

	projectDirs, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read projects directory: %w", err)
	}

	for _, d := range projectDirs {
		if !d.IsDir() || d.Name() == primary {
			continue
		}
		info, err := lookupIndex(filepath.Join(dir, d.Name(), indexFileName), sessionID)
		if err != nil {
			continue
		}
		if info != nil {
			return info, nil
		}
	}
	return nil, nil
}

// lookupIndex reads one index file. A missing file is not an error.
func lookupIndex(path, sessionID string) (*core.SessionInfo, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var idx sessionsIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for _, e := range idx.Entries {
		if e.SessionID != sessionID {
			continue
		}
		return &core.SessionInfo{
			ID:       e.SessionID,
			Name:     displayName(e),
			Branch:   e.GitBranch,
			Messages: e.MessageCount,
		}, nil
	}
	return nil, nil
}

// displayName prefers the generated summary and falls back to the first
// prompt with injected markup removed.
func displayName(e indexEntry) string {
	if e.Summary != "" {
		return core.Truncate(core.CollapseSpace(e.Summary), maxNameLen)
	}
	return core.PromptTitle(e.FirstPrompt, maxNameLen)
}
