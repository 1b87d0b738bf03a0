package profile

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed profiles/*.toml
var builtinFS embed.FS

// FallbackName is the profile substituted for unknown names.
const FallbackName = "online"

// builtinDescriptions doubles as the builtin name table and the source for
// shell completion entries.
var builtinDescriptions = map[string]string{
	"base":      "Minimal sandbox (always included)",
	"online":    "Full network access",
	"localhost": "Localhost network only",
	"rust":      "Rust/Cargo toolchain",
	"node":      "Node.js/npm toolchain",
	"python":    "Python/pip toolchain",
	"go":        "Go toolchain",
	"bun":       "Bun runtime",
	"claude":    "Claude Code (~/.claude access)",
	"gpg":       "GPG signing support",
	"opencode":  "OpenCode support",
}

var loadBuiltins = sync.OnceValues(func() (map[string]Profile, error) {
	table := make(map[string]Profile, len(builtinDescriptions))
	for name := range builtinDescriptions {
		data, err := builtinFS.ReadFile("profiles/" + name + ".toml")
		if err != nil {
			return nil, fmt.Errorf("builtin profile %q missing: %w", name, err)
		}
		var p Profile
		if err := toml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("builtin profile %q is invalid: %w", name, err)
		}
		table[name] = p
	}
	return table, nil
})

// Builtin looks up a compiled-in profile by exact name. The error return
// signals a defect in the embedded table, not user input.
func Builtin(name string) (Profile, bool, error) {
	table, err := loadBuiltins()
	if err != nil {
		return Profile{}, false, err
	}
	p, ok := table[name]
	return p, ok, nil
}

// BuiltinNames returns the builtin profile names, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinDescriptions))
	for name := range builtinDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the one-line description of a builtin profile.
func Describe(name string) string {
	return builtinDescriptions[name]
}
