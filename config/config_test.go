package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sonnes/lekha/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	s := Resolve()

	assert.Equal(t, core.DefaultOrder, s.Render.Order)
	assert.True(t, s.Render.Toggles[core.SectionFiles])
	assert.False(t, s.Render.Toggles[core.SectionRatio])
	assert.Equal(t, "/data/lekha/history.jsonl", s.LogFile)
	assert.False(t, s.Skip)
	assert.True(t, s.Redact)
	assert.Equal(t, RTKAuto, s.RTK)
}

func TestMerge(t *testing.T) {
	yes, no := true, false
	got := Merge(
		Layer{Toggles: map[core.Section]bool{core.SectionGit: true, core.SectionLOC: true}, LogFile: "/a", Skip: &yes},
		Layer{Toggles: map[core.Section]bool{core.SectionGit: false}, RTK: RTKOff},
		Layer{Skip: &no, Order: []core.Section{core.SectionCost}},
	)
	assert.Equal(t, map[core.Section]bool{core.SectionGit: false, core.SectionLOC: true}, got.Toggles)
	assert.Equal(t, "/a", got.LogFile)
	assert.Equal(t, RTKOff, got.RTK)
	require.NotNil(t, got.Skip)
	assert.False(t, *got.Skip)
	assert.Equal(t, []core.Section{core.SectionCost}, got.Order)
	assert.Nil(t, got.Redact)
}

func TestLayering(t *testing.T) {
	path := writeConfig(t, `
show_git = false
show_ratio = true
rtk = "off"
section_order = "cost,meta"
`)

	t.Run("file beats default", func(t *testing.T) {
		s := Load(path, env(nil))
		assert.False(t, s.Render.Toggles[core.SectionGit])
		assert.True(t, s.Render.Toggles[core.SectionRatio])
		assert.Equal(t, RTKOff, s.RTK)
		assert.Equal(t, []core.Section{core.SectionCost, core.SectionMeta}, s.Render.Order)
		assert.True(t, s.Render.Toggles[core.SectionFiles], "untouched toggles keep defaults")
	})

	t.Run("env beats file", func(t *testing.T) {
		s := Load(path, env(map[string]string{
			"LEKHA_SHOW_GIT":      "true",
			"LEKHA_RTK":           "on",
			"LEKHA_SECTION_ORDER": "tools",
		}))
		assert.True(t, s.Render.Toggles[core.SectionGit])
		assert.True(t, s.Render.Toggles[core.SectionRatio])
		assert.Equal(t, RTKOn, s.RTK)
		assert.Equal(t, []core.Section{core.SectionTools}, s.Render.Order)
	})

	t.Run("empty env assignment is unset", func(t *testing.T) {
		s := Load(path, env(map[string]string{"LEKHA_SHOW_GIT": "", "LEKHA_RTK": "  "}))
		assert.False(t, s.Render.Toggles[core.SectionGit])
		assert.Equal(t, RTKOff, s.RTK)
	})

	t.Run("invalid env value is ignored", func(t *testing.T) {
		s := Load(path, env(map[string]string{"LEKHA_SHOW_GIT": "maybe", "LEKHA_RTK": "sometimes"}))
		assert.False(t, s.Render.Toggles[core.SectionGit])
		assert.Equal(t, RTKOff, s.RTK)
	})
}

func TestFromFileTolerance(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		l := FromFile(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Equal(t, Layer{}, l)
	})

	t.Run("malformed lines skipped", func(t *testing.T) {
		path := writeConfig(t, `show_git = false
this is not toml
show_loc = nonsense
unknown_key = true
rtk = "sometimes"
skip = true
log_file = "/tmp/h.jsonl"
`)
		l := FromFile(path)
		assert.Equal(t, map[core.Section]bool{core.SectionGit: false}, l.Toggles)
		require.NotNil(t, l.Skip)
		assert.True(t, *l.Skip)
		assert.Equal(t, "/tmp/h.jsonl", l.LogFile)
		assert.Equal(t, RTKMode(""), l.RTK)
	})

	t.Run("array order", func(t *testing.T) {
		path := writeConfig(t, `section_order = ["meta", "cost"]`)
		assert.Equal(t, []core.Section{core.SectionMeta, core.SectionCost}, FromFile(path).Order)
	})
}

func TestSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lekha", "config.toml")

	require.NoError(t, Set(path, "show_git=false", "rtk=auto", "section_order=meta,cost"))

	lines, err := Stored(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"show_git = false",
		"section_order = meta,cost",
		"rtk = auto",
	}, lines)

	s := Load(path, env(nil))
	assert.False(t, s.Render.Toggles[core.SectionGit])
	assert.Equal(t, RTKAuto, s.RTK)

	t.Run("empty value removes key", func(t *testing.T) {
		require.NoError(t, Set(path, "rtk="))
		lines, err := Stored(path)
		require.NoError(t, err)
		assert.NotContains(t, lines, "rtk = auto")
	})

	errs := []struct {
		name string
		in   string
	}{
		{"no equals", "show_git"},
		{"unknown key", "colour=red"},
		{"bad bool", "show_git=maybe"},
		{"bad rtk", "rtk=always"},
		{"unknown section", "section_order=meta,bogus"},
	}
	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			before, _ := os.ReadFile(path)
			assert.Error(t, Set(path, tt.in))
			after, _ := os.ReadFile(path)
			assert.Equal(t, before, after, "invalid input leaves the file untouched")
		})
	}
}

func TestSetOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SetOrder(path, []core.Section{core.SectionCost, core.SectionTools}))
	assert.Equal(t, []core.Section{core.SectionCost, core.SectionTools}, FromFile(path).Order)

	assert.Error(t, SetOrder(path, nil))
	assert.Error(t, SetOrder(path, []core.Section{"bogus"}))
}

func TestReset(t *testing.T) {
	path := writeConfig(t, `show_git = false`)
	require.NoError(t, Reset(path))
	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	require.NoError(t, Reset(path), "reset is idempotent")
}

func TestShow(t *testing.T) {
	lines := Show(Resolve())
	assert.Len(t, lines, len(Keys()))
	assert.Contains(t, lines, "show_files = true")
	assert.Contains(t, lines, "rtk = auto")
}

func TestRTKEnabled(t *testing.T) {
	found := func(string) (string, error) { return "/usr/bin/rtk", nil }
	missing := func(string) (string, error) { return "", errors.New("not found") }

	tests := []struct {
		name   string
		mode   RTKMode
		toggle bool
		look   func(string) (string, error)
		want   bool
	}{
		{"auto with rtk", RTKAuto, true, found, true},
		{"auto without rtk", RTKAuto, true, missing, false},
		{"on", RTKOn, true, missing, true},
		{"off", RTKOff, true, found, false},
		{"section disabled", RTKOn, false, found, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Resolve()
			s.RTK = tt.mode
			s.Render.Toggles[core.SectionRTK] = tt.toggle
			assert.Equal(t, tt.want, s.rtkEnabled(tt.look))
		})
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("LEKHA_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, "/cfg/lekha/config.toml", Path())
	assert.Equal(t, "/data/lekha", DataDir())
	assert.Equal(t, "/data/lekha/baselines", BaselineDir())

	t.Setenv("LEKHA_CONFIG", "/etc/lekha.toml")
	assert.Equal(t, "/etc/lekha.toml", Path())
}
