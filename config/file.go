package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/sonnes/lekha/core"
)

// FromFile builds the persisted layer. A missing file yields an empty layer.
// Malformed lines, unknown keys and invalid values are skipped.
func FromFile(path string) Layer {
	values, err := readValues(path)
	if err != nil {
		log.Warn("read config file", "path", path, "err", err)
	}
	var l Layer
	for _, k := range keys {
		v, ok := values[k.name]
		if !ok {
			continue
		}
		if err := k.apply(&l, v); err != nil {
			log.Warn("ignoring config value", "key", k.name, "err", err)
		}
	}
	return l
}

// Stored returns the persisted settings as "key = value" lines, exactly as
// stored (rtk = auto stays auto).
func Stored(path string) ([]string, error) {
	values, err := readValues(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, name := range Keys() {
		if v, ok := values[name]; ok {
			lines = append(lines, fmt.Sprintf("%s = %s", name, v))
		}
	}
	return lines, nil
}

// Set validates and persists one or more key=value assignments. An empty
// value removes the key. Nothing is written if any assignment is invalid.
func Set(path string, assignments ...string) error {
	values, err := readValues(path)
	if err != nil {
		return err
	}

	for _, a := range assignments {
		name, v, ok := strings.Cut(a, "=")
		if !ok {
			return fmt.Errorf("invalid assignment %q, want key=value", a)
		}
		name, v = strings.TrimSpace(name), strings.TrimSpace(v)

		k, ok := lookupKey(name)
		if !ok {
			return fmt.Errorf("unknown key %q (known: %s)", name, strings.Join(Keys(), ", "))
		}
		if v == "" {
			delete(values, name)
			continue
		}
		if err := validate(k, v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		values[name] = v
	}

	return writeValues(path, values)
}

// SetOrder validates and persists a section order.
func SetOrder(path string, order []core.Section) error {
	if len(order) == 0 {
		return errors.New("no sections given")
	}
	return Set(path, "section_order="+core.JoinOrder(order))
}

// Reset removes the config file so every setting falls back to its default.
func Reset(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// validate applies v to a scratch layer and, for section orders, rejects
// unknown section names.
func validate(k key, v string) error {
	var l Layer
	if err := k.apply(&l, v); err != nil {
		return err
	}
	for _, s := range l.Order {
		if !s.Known() {
			return fmt.Errorf("unknown section %q", s)
		}
	}
	return nil
}

// readValues returns the valid, recognised values in the file as strings.
func readValues(path string) (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return values, err
	}

	for name, raw := range decode(string(data)) {
		k, ok := lookupKey(name)
		if !ok {
			log.Debug("ignoring unknown config key", "key", name)
			continue
		}
		v, ok := stringify(raw)
		if !ok {
			continue
		}
		if err := k.apply(&Layer{}, v); err != nil {
			log.Debug("ignoring invalid config value", "key", name, "err", err)
			continue
		}
		values[name] = v
	}
	return values, nil
}

// decode parses the whole document, falling back to one line at a time so a
// single malformed line does not discard the rest.
func decode(doc string) map[string]any {
	raw := make(map[string]any)
	if _, err := toml.Decode(doc, &raw); err == nil {
		return raw
	}

	raw = make(map[string]any)
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := make(map[string]any)
		if _, err := toml.Decode(line, &m); err != nil {
			log.Debug("skipping malformed config line", "line", line)
			continue
		}
		for k, v := range m {
			raw[k] = v
		}
	}
	return raw
}

func stringify(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), true
	default:
		return "", false
	}
}

// writeValues encodes values as TOML and writes them atomically using a
// temporary file and rename.
func writeValues(path string, values map[string]string) error {
	doc := make(map[string]any, len(values))
	for name, v := range values {
		k, _ := lookupKey(name)
		if k.kind == kindBool {
			b, _ := parseBool(v)
			doc[name] = b
			continue
		}
		doc[name] = v
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}
