package main

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/sonnes/lekha/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 1  // per file
	maxAgeDays = 14 // days kept
	maxBackups = 20 // old files kept
)

// hookLog points the logger at the rotated diagnostic log so hook commands
// never write into the agent's session. It returns a func that closes the
// file. When the log cannot be created output stays on stderr.
func hookLog() func() {
	path := config.DiagnosticLog()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Error("create log directory", "err", err)
		return func() {}
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxAge:     maxAgeDays,
		MaxBackups: maxBackups,
		Compress:   true,
		LocalTime:  true,
	}
	log.SetOutput(rotator)
	log.SetReportTimestamp(true)
	return func() {
		log.SetOutput(os.Stderr)
		_ = rotator.Close()
	}
}
