// Package logging routes the standard logger through a level filter.
// Call sites use the "[LEVEL] message" prefix convention.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/logutils"
)

var Levels = []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR"}

// Normalize maps a user supplied level to one of Levels, defaulting to INFO.
func Normalize(level string) logutils.LogLevel {
	lvl := logutils.LogLevel(strings.ToUpper(strings.TrimSpace(level)))
	for _, l := range Levels {
		if l == lvl {
			return lvl
		}
	}
	return "INFO"
}

func NewFilter(w io.Writer, level string) *logutils.LevelFilter {
	return &logutils.LevelFilter{
		Levels:   Levels,
		MinLevel: Normalize(level),
		Writer:   w,
	}
}

// Setup installs the filter on the standard logger.
func Setup(w io.Writer, level string) {
	log.SetOutput(NewFilter(w, level))
	log.SetFlags(log.LstdFlags)
}

// OpenFile opens (creating parents) a log file in append mode. The TUI logs
// here because bubbletea owns the terminal.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
}
