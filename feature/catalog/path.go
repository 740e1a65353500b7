package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return filepath.Clean(path), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// PrepareDataPath creates the data directory when it does not exist and
// fails when the path exists but is not a directory.
func PrepareDataPath(path string) (string, error) {
	dir, err := ExpandPath(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create data path %s: %w", dir, err)
		}
		return dir, nil
	case err != nil:
		return "", fmt.Errorf("failed to stat data path %s: %w", dir, err)
	case !info.IsDir():
		return "", fmt.Errorf("data path %s is not a directory", dir)
	}
	return dir, nil
}
