// Package dotdir resolves the .mousetron/ directory that holds config.toml,
// the memory containers and the default execution database.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirName = ".mousetron"

	containersDir = "containers"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path to a .mousetron/ directory, creating it
// if needed. Order of precedence:
//  1. Provided override
//  2. Local ./.mousetron/ dir
//  3. Home ~/.mousetron/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating mousetron directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// ContainersDir returns configured when set, otherwise containers/ under the
// resolved target directory.
func (m *Manager) ContainersDir(overrideDir, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	target, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(target, containersDir), nil
}

func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
