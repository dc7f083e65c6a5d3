// Package config resolves lekha settings from three layers: built-in
// defaults, the persisted TOML file, and the environment. Later layers win.
package config

import (
	"maps"
	"os/exec"

	"github.com/sonnes/lekha/core"
)

// RTKMode controls whether the savings section is computed.
type RTKMode string

const (
	RTKAuto RTKMode = "auto"
	RTKOn   RTKMode = "on"
	RTKOff  RTKMode = "off"
)

// DefaultLogFileName is the history log name inside the data directory.
const DefaultLogFileName = "history.jsonl"

// Layer is one partial configuration source. Zero values mean "not set".
type Layer struct {
	Toggles map[core.Section]bool
	Order   []core.Section
	LogFile string
	Skip    *bool
	RTK     RTKMode
	Redact  *bool
}

// Merge overlays layers left to right. A field set in a later layer replaces
// the same field from earlier ones; toggles merge per section.
func Merge(layers ...Layer) Layer {
	var out Layer
	for _, l := range layers {
		if len(l.Toggles) > 0 {
			if out.Toggles == nil {
				out.Toggles = make(map[core.Section]bool)
			}
			maps.Copy(out.Toggles, l.Toggles)
		}
		if len(l.Order) > 0 {
			out.Order = append([]core.Section(nil), l.Order...)
		}
		if l.LogFile != "" {
			out.LogFile = l.LogFile
		}
		if l.Skip != nil {
			out.Skip = l.Skip
		}
		if l.RTK != "" {
			out.RTK = l.RTK
		}
		if l.Redact != nil {
			out.Redact = l.Redact
		}
	}
	return out
}

// Defaults is the built-in layer. Every field is set.
func Defaults() Layer {
	cfg := core.DefaultRenderConfig()
	return Layer{
		Toggles: cfg.Toggles,
		Order:   cfg.Order,
		LogFile: defaultLogFile(),
		Skip:    boolPtr(false),
		RTK:     RTKAuto,
		Redact:  boolPtr(true),
	}
}

// Settings is the fully resolved configuration for one run.
type Settings struct {
	Render  core.RenderConfig
	LogFile string
	Skip    bool
	RTK     RTKMode
	Redact  bool
}

// Resolve merges the defaults with the given layers, in order.
func Resolve(layers ...Layer) Settings {
	l := Merge(append([]Layer{Defaults()}, layers...)...)
	return Settings{
		Render: core.RenderConfig{
			Toggles: l.Toggles,
			Order:   l.Order,
		},
		LogFile: l.LogFile,
		Skip:    deref(l.Skip),
		RTK:     l.RTK,
		Redact:  deref(l.Redact),
	}
}

// Load resolves defaults, the file at path, and the process environment.
func Load(path string, getenv func(string) string) Settings {
	return Resolve(FromFile(path), FromEnv(getenv))
}

// RTKEnabled decides whether to run the savings reconciler. Auto mode is
// on when rtk is installed.
func (s Settings) RTKEnabled() bool {
	return s.rtkEnabled(exec.LookPath)
}

func (s Settings) rtkEnabled(lookPath func(string) (string, error)) bool {
	if !s.Render.Enabled(core.SectionRTK) {
		return false
	}
	switch s.RTK {
	case RTKOn:
		return true
	case RTKOff:
		return false
	default:
		_, err := lookPath("rtk")
		return err == nil
	}
}

func boolPtr(b bool) *bool { return &b }

func deref(b *bool) bool { return b != nil && *b }
