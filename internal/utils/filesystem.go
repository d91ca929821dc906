package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProjectMarkers are the files that identify a project root.
var ProjectMarkers = []string{"mix.exs", ".confvault.toml"}

// FindProjectRoot walks up from dir to the nearest directory containing one
// of ProjectMarkers. Returns an empty string when none is found.
func FindProjectRoot(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	for {
		for _, marker := range ProjectMarkers {
			_, err := os.Stat(filepath.Join(current, marker))
			if err == nil {
				return current, nil
			}
			if !os.IsNotExist(err) {
				return "", fmt.Errorf("error checking for %s at %s: %w", marker, current, err)
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", nil
		}
		current = parent
	}
}

// ResolveRoot returns the project root for a command run from dir: the
// nearest enclosing project, or dir itself.
func ResolveRoot(dir string) (string, error) {
	root, err := FindProjectRoot(dir)
	if err != nil {
		return "", err
	}
	if root == "" {
		return filepath.Abs(dir)
	}
	return root, nil
}
