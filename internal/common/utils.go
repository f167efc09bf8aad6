package common

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// CleanText decodes any HTML entities left in s and collapses runs of
// whitespace into single spaces.
func CleanText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

// ExpandHome replaces a leading "~" in path with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
