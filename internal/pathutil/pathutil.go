// Package pathutil expands user-supplied path strings before they reach
// the policy compiler.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Expand resolves a leading ~ to the user's home directory and expands
// $VAR references. Unresolvable input is returned unchanged.
func Expand(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// ExpandAll expands every path in a list.
func ExpandAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = Expand(p)
	}
	return out
}
