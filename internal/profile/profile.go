// Package profile loads and composes named sandbox profiles. A profile is
// a composable bundle of filesystem, network, and environment rules,
// identified by a builtin name or a TOML file stem.
package profile

import (
	"strings"

	"github.com/sxtool/sx/internal/config"
)

// Profile is one composable unit. Immutable once loaded.
type Profile struct {
	// Optional network mode override. Empty means no opinion.
	NetworkMode config.NetworkMode `toml:"network_mode"`
	Filesystem  Filesystem         `toml:"filesystem"`
	Shell       Shell              `toml:"shell"`
	Seatbelt    Seatbelt           `toml:"seatbelt"`
}

// Filesystem lists the path rules a profile contributes.
type Filesystem struct {
	AllowRead     []string `toml:"allow_read"`
	DenyRead      []string `toml:"deny_read"`
	AllowWrite    []string `toml:"allow_write"`
	AllowListDirs []string `toml:"allow_list_dirs"`
}

// Shell lists environment variable pass/deny patterns.
type Shell struct {
	PassEnv []string `toml:"pass_env"`
	DenyEnv []string `toml:"deny_env"`
}

// Seatbelt carries a raw policy fragment, appended verbatim to the
// compiled document. Escape hatch; the author is responsible for safety.
type Seatbelt struct {
	Raw string `toml:"raw"`
}

// Compose merges profiles in order into one. The network mode is
// overwritten by every later profile that specifies one; list fields are
// stable-order duplicate-free unions; raw fragments are concatenated in
// order.
func Compose(profiles []Profile) Profile {
	var result Profile
	var raw []string
	for _, p := range profiles {
		if p.NetworkMode.IsSet() {
			result.NetworkMode = p.NetworkMode
		}
		result.Filesystem.AllowRead = mergeUnique(result.Filesystem.AllowRead, p.Filesystem.AllowRead)
		result.Filesystem.DenyRead = mergeUnique(result.Filesystem.DenyRead, p.Filesystem.DenyRead)
		result.Filesystem.AllowWrite = mergeUnique(result.Filesystem.AllowWrite, p.Filesystem.AllowWrite)
		result.Filesystem.AllowListDirs = mergeUnique(result.Filesystem.AllowListDirs, p.Filesystem.AllowListDirs)
		result.Shell.PassEnv = mergeUnique(result.Shell.PassEnv, p.Shell.PassEnv)
		result.Shell.DenyEnv = mergeUnique(result.Shell.DenyEnv, p.Shell.DenyEnv)
		if p.Seatbelt.Raw != "" {
			raw = append(raw, strings.TrimRight(p.Seatbelt.Raw, "\n"))
		}
	}
	result.Seatbelt.Raw = strings.Join(raw, "\n")
	return result
}

func mergeUnique(target []string, source []string) []string {
	seen := make(map[string]struct{}, len(target))
	for _, s := range target {
		seen[s] = struct{}{}
	}
	for _, s := range source {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			target = append(target, s)
		}
	}
	return target
}
