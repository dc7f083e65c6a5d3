package config

import (
	"strings"

	"github.com/charmbracelet/log"
)

// FromEnv builds the environment layer. Variables that are unset or set to
// an empty value are ignored, as are invalid values.
func FromEnv(getenv func(string) string) Layer {
	var l Layer
	for _, k := range keys {
		v := getenv(k.env)
		if strings.TrimSpace(v) == "" {
			continue
		}
		if err := k.apply(&l, v); err != nil {
			log.Warn("ignoring environment override", "var", k.env, "err", err)
		}
	}
	return l
}
