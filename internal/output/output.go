// Package output exports generated text.
package output

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/gosimple/slug"
)

const DefaultFileName = "content.txt"

// FileName derives a download name from the topic.
func FileName(topic string) string {
	s := slug.Make(topic)
	if s == "" {
		return DefaultFileName
	}
	if len(s) > 60 {
		s = strings.TrimRight(s[:60], "-")
	}
	return s + ".txt"
}

// Save writes text to dir/name and returns the path. The file holds exactly
// text, nothing else.
func Save(dir, name, text string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if name == "" {
		name = DefaultFileName
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Copy puts text on the system clipboard.
func Copy(text string) error {
	return clipboard.WriteAll(text)
}

// ClipboardAvailable reports whether Copy can work on this system.
func ClipboardAvailable() bool {
	return !clipboard.Unsupported
}
