// Package dotdir manages the .mentor/ and ~/.mentor directories.
//
// The dot directory holds config.toml, credentials.toml, the instance lock
// and, for the embedded vector stores, the persisted conversation memory.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirName = ".mentor"

	// EnvHome names a dot directory to use instead of the discovered one.
	EnvHome = "MENTOR_HOME"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path of the .mentor/ directory to use,
// creating it when missing. Precedence:
//  1. overrideDir
//  2. $MENTOR_HOME
//  3. the nearest .mentor/ in the working directory or one of its parents
//  4. ~/.mentor/
func (m *Manager) Target(overrideDir string) (string, error) {
	dir := overrideDir
	if dir == "" {
		dir = os.Getenv(EnvHome)
	}

	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = findUp(cwd)
	}

	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating mentor directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// Path resolves the target directory and joins elem onto it.
func (m *Manager) Path(overrideDir string, elem ...string) (string, error) {
	target, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{target}, elem...)...), nil
}

// findUp returns the first .mentor/ directory found walking from start to
// the filesystem root, or "".
func findUp(start string) string {
	for dir := start; ; {
		candidate := filepath.Join(dir, dirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
