package config

import (
	"os"
	"path/filepath"
)

const appName = "lekha"

// Path returns the config file location. LEKHA_CONFIG overrides it;
// otherwise it lives under XDG_CONFIG_HOME.
func Path() string {
	if p := os.Getenv("LEKHA_CONFIG"); p != "" {
		return p
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, appName, "config.toml")
}

// DataDir returns lekha's data directory under XDG_DATA_HOME.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, appName)
}

// BaselineDir holds rtk baselines captured at session start.
func BaselineDir() string {
	return filepath.Join(DataDir(), "baselines")
}

// DiagnosticLog is where hook commands write their own log output.
func DiagnosticLog() string {
	return filepath.Join(DataDir(), appName+".log")
}

func defaultLogFile() string {
	return filepath.Join(DataDir(), DefaultLogFileName)
}
