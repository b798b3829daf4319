// Package dotdir manages the .legalqa/ and ~/.legalqa directories that hold
// config.toml and, by default, the SQLite history and vector databases.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the legalqa directory.
	dirName = ".legalqa"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path to a .legalqa/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.legalqa/ dir
//  3. Home ~/.legalqa/ dir
//
// An empty string is returned when none of them exists.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating legalqa directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if isDir(filepath.Join(cwd, dirName)) {
		return filepath.Join(cwd, dirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	if isDir(filepath.Join(home, dirName)) {
		return filepath.Join(home, dirName), nil
	}

	return "", nil
}

// Ensure behaves like Target but creates ~/.legalqa/ when nothing exists yet.
func (m *Manager) Ensure(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil || dir != "" {
		return dir, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	dir = filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating legalqa directory %s: %w", dir, err)
	}
	return dir, nil
}

// Resolve joins name onto the resolved .legalqa/ directory unless name is
// already absolute. It returns name unchanged when no directory exists.
func (m *Manager) Resolve(overrideDir, name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return name, nil
	}
	dir, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	if dir == "" {
		return name, nil
	}
	return filepath.Join(dir, name), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
