package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sonnes/lekha/core"
)

// key describes one setting: its file key, environment variable, and how to
// apply and show a value.
type key struct {
	name string
	env  string
	// kind is the TOML type used when the value is persisted.
	kind  kind
	apply func(l *Layer, v string) error
	show  func(s Settings) string
}

type kind int

const (
	kindString kind = iota
	kindBool
)

// keys lists every recognised setting in display order.
var keys = buildKeys()

func buildKeys() []key {
	var ks []key
	for _, sec := range core.Togglable {
		ks = append(ks, key{
			name: "show_" + string(sec),
			env:  "LEKHA_SHOW_" + strings.ToUpper(string(sec)),
			kind: kindBool,
			apply: func(l *Layer, v string) error {
				b, err := parseBool(v)
				if err != nil {
					return err
				}
				if l.Toggles == nil {
					l.Toggles = make(map[core.Section]bool)
				}
				l.Toggles[sec] = b
				return nil
			},
			show: func(s Settings) string { return strconv.FormatBool(s.Render.Toggles[sec]) },
		})
	}
	return append(ks,
		key{
			name: "section_order",
			env:  "LEKHA_SECTION_ORDER",
			kind: kindString,
			apply: func(l *Layer, v string) error {
				order := core.ParseOrder(v)
				if len(order) == 0 {
					return fmt.Errorf("empty section order")
				}
				l.Order = order
				return nil
			},
			show: func(s Settings) string { return core.JoinOrder(s.Render.Order) },
		},
		key{
			name: "log_file",
			env:  "LEKHA_LOG_FILE",
			kind: kindString,
			apply: func(l *Layer, v string) error {
				v = strings.TrimSpace(v)
				if v == "" {
					return fmt.Errorf("empty path")
				}
				l.LogFile = expandHome(v)
				return nil
			},
			show: func(s Settings) string { return s.LogFile },
		},
		key{
			name: "skip",
			env:  "LEKHA_SKIP",
			kind: kindBool,
			apply: func(l *Layer, v string) error {
				b, err := parseBool(v)
				if err != nil {
					return err
				}
				l.Skip = &b
				return nil
			},
			show: func(s Settings) string { return strconv.FormatBool(s.Skip) },
		},
		key{
			name: "rtk",
			env:  "LEKHA_RTK",
			kind: kindString,
			apply: func(l *Layer, v string) error {
				m, err := parseRTKMode(v)
				if err != nil {
					return err
				}
				l.RTK = m
				return nil
			},
			show: func(s Settings) string { return string(s.RTK) },
		},
		key{
			name: "redact",
			env:  "LEKHA_REDACT",
			kind: kindBool,
			apply: func(l *Layer, v string) error {
				b, err := parseBool(v)
				if err != nil {
					return err
				}
				l.Redact = &b
				return nil
			},
			show: func(s Settings) string { return strconv.FormatBool(s.Redact) },
		},
	)
}

func lookupKey(name string) (key, bool) {
	for _, k := range keys {
		if k.name == name {
			return k, true
		}
	}
	return key{}, false
}

// Keys returns the names of all settings in display order.
func Keys() []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.name
	}
	return names
}

// Show renders every resolved setting as "key = value" lines.
func Show(s Settings) []string {
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("%s = %s", k.name, k.show(s))
	}
	return lines
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "yes", "on":
		return true, nil
	case "0", "f", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}

func parseRTKMode(v string) (RTKMode, error) {
	switch m := RTKMode(strings.ToLower(strings.TrimSpace(v))); m {
	case RTKAuto, RTKOn, RTKOff:
		return m, nil
	}
	return "", fmt.Errorf("invalid rtk mode %q (want auto, on or off)", v)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
