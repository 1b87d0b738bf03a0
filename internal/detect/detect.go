// Package detect infers the project type of a directory from marker
// files, so the matching toolchain profile can be applied automatically.
package detect

import (
	"os"
	"path/filepath"
	"sort"
)

// ProjectType names a detected toolchain. Values double as profile names.
type ProjectType = string

const (
	Bun    ProjectType = "bun"
	Node   ProjectType = "node"
	Python ProjectType = "python"
	Rust   ProjectType = "rust"
	Go     ProjectType = "go"
)

// builtinMarkers is checked in order. Bun comes before node because a bun
// project usually has a package.json too.
var builtinMarkers = []struct {
	profile ProjectType
	files   []string
}{
	{Bun, []string{"bun.lockb", "bunfig.toml"}},
	{Node, []string{"package.json"}},
	{Python, []string{"requirements.txt", "pyproject.toml", "setup.py"}},
	{Rust, []string{"Cargo.toml"}},
	{Go, []string{"go.mod"}},
}

// Detect returns the profile name matching the first marker file found in
// dir, or "" when nothing matches.
func Detect(dir string) ProjectType {
	for _, m := range builtinMarkers {
		if anyExists(dir, m.files) {
			return m.profile
		}
	}
	return ""
}

// DetectWithRules checks user-configured markers before the builtin set.
// User rules are evaluated in sorted profile-name order so the result is
// deterministic regardless of map iteration.
func DetectWithRules(dir string, rules map[string][]string) ProjectType {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if anyExists(dir, rules[name]) {
			return name
		}
	}
	return Detect(dir)
}

func anyExists(dir string, files []string) bool {
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(dir, f)); err == nil {
			return true
		}
	}
	return false
}
