package pathutil

import "path/filepath"

// Normalize returns the canonical absolute form of a scan root: relative
// paths resolve against the working directory, "." and ".." collapse, and
// trailing slashes are removed.
func Normalize(path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
