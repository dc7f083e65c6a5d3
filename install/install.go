// Package install registers lekha as a Claude Code hook. A SessionStart hook
// captures the rtk baseline and a SessionEnd hook prints the report.
package install

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// Config holds the settings for the install command.
type Config struct {
	Dir     string // project root; empty installs into the user settings
	Command string // binary to invoke, e.g. "lekha"
}

// hook is one event registration.
type hook struct {
	event string
	args  string
}

var hooks = []hook{
	{"SessionStart", "baseline"},
	{"SessionEnd", "report"},
}

// Run adds the lekha hooks to the Claude settings file. Existing settings and
// hooks are preserved and running it twice changes nothing.
func Run(cfg Config) error {
	path, err := SettingsPath(cfg.Dir)
	if err != nil {
		return err
	}
	return update(path, func(h map[string][]matcherGroup) {
		for _, hk := range hooks {
			cmd := command(cfg, hk)
			if registered(h[hk.event], cmd) {
				continue
			}
			h[hk.event] = append(h[hk.event], matcherGroup{
				Hooks: []hookHandler{{Type: "command", Command: cmd}},
			})
		}
	})
}

// Uninstall removes the lekha hooks and leaves everything else in place.
func Uninstall(cfg Config) error {
	path, err := SettingsPath(cfg.Dir)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return update(path, func(h map[string][]matcherGroup) {
		for _, hk := range hooks {
			cmd := command(cfg, hk)
			groups := h[hk.event][:0]
			for _, mg := range h[hk.event] {
				mg.Hooks = slices.DeleteFunc(mg.Hooks, func(hh hookHandler) bool { return hh.Command == cmd })
				if len(mg.Hooks) > 0 {
					groups = append(groups, mg)
				}
			}
			if len(groups) == 0 {
				delete(h, hk.event)
			} else {
				h[hk.event] = groups
			}
		}
	})
}

// SettingsPath returns the Claude settings file for dir, or the user-level
// file when dir is empty.
func SettingsPath(dir string) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("find home directory: %w", err)
		}
		dir = home
	}
	return filepath.Join(dir, ".claude", "settings.json"), nil
}

func command(cfg Config, hk hook) string {
	bin := cfg.Command
	if bin == "" {
		bin = "lekha"
	}
	return bin + " " + hk.args
}

func registered(groups []matcherGroup, cmd string) bool {
	for _, mg := range groups {
		for _, h := range mg.Hooks {
			if h.Command == cmd {
				return true
			}
		}
	}
	return false
}

// claudeSettings represents the structure of .claude/settings.json relevant to hooks.
type claudeSettings struct {
	Hooks map[string][]matcherGroup `json:"hooks,omitempty"`
}

type matcherGroup struct {
	Matcher string        `json:"matcher,omitempty"`
	Hooks   []hookHandler `json:"hooks"`
}

type hookHandler struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

// update applies fn to the hooks in the settings file at path and writes the
// result back, preserving every other field.
func update(path string, fn func(map[string][]matcherGroup)) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	var settings claudeSettings
	full := make(map[string]any)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &full); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &settings); err != nil {
			return fmt.Errorf("parse hooks in %s: %w", path, err)
		}
	}
	if settings.Hooks == nil {
		settings.Hooks = make(map[string][]matcherGroup)
	}

	fn(settings.Hooks)

	if len(settings.Hooks) == 0 {
		delete(full, "hooks")
	} else {
		full["hooks"] = settings.Hooks
	}

	out, err := json.MarshalIndent(full, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, append(out, '\n'))
}

// writeFile replaces path atomically via a temp file in the same directory.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*.json")
	if err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
