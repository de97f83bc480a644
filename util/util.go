package util

import (
	"os"
	"path/filepath"
	"strings"
)

// StringListContains returns true if the list of strings contains item.
func StringListContains(list []string, item string) bool {
	if list != nil {
		for i := range list {
			if list[i] == item {
				return true
			}
		}
	}
	return false
}

// TruncateString shortens text to maxLength, replacing the tail with
// an ellipsis when it doesn't fit. Used for fixed-width report columns.
func TruncateString(text string, maxLength int) string {
	if len(text) > maxLength && maxLength > 3 {
		return text[:maxLength-3] + "..."
	}
	return text
}

// ExpandTilde expands the tilde in paths like "~/logs" to the user's
// home directory.
func ExpandTilde(filePath string) (string, error) {
	if !strings.HasPrefix(filePath, "~") {
		return filePath, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	relPath := strings.TrimPrefix(strings.TrimPrefix(filePath, "~"), string(os.PathSeparator))
	return filepath.Join(homeDir, relPath), nil
}

// FileExists returns true if the file at path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LooksSafeToDelete returns true if path looks safe to delete. To be
// safe, the path must have a minimum length and a minimum number of
// path separators. This keeps an errant config value from wiping out
// something like /usr or /home.
func LooksSafeToDelete(path string, minLength, minSeparators int) bool {
	separators := strings.Count(path, string(os.PathSeparator))
	return len(path) >= minLength && separators >= minSeparators
}
