// Package sandbox compiles resolved sandbox parameters into a Seatbelt
// policy document and supervises execution under it.
package sandbox

import (
	"fmt"
	"os"
	"strings"

	"github.com/sxtool/sx/internal/config"
)

// Params is the fully-resolved compiler input, constructed once per
// invocation from merged config, composed profile, and CLI overrides.
// Immutable after construction.
type Params struct {
	WorkingDir    string
	HomeDir       string
	NetworkMode   config.NetworkMode
	AllowRead     []string
	DenyRead      []string
	AllowWrite    []string
	AllowListDirs []string
	// Raw policy fragment appended verbatim. Escape hatch.
	RawRules string
}

// statPath is swapped in tests to control the concrete-file check for
// write rules without touching the filesystem.
var statPath = os.Stat

// Compile turns params into a policy document. Sections appear in a fixed
// order regardless of input; within a section the given rule order is
// preserved. Deny rules for reads are emitted strictly after the allow
// rules they override (the enforcement point is last-match-wins). Output
// is byte-identical for equal input.
//
// Any path failing validation aborts the whole compile; a partial
// document is never returned.
func Compile(params *Params) (string, error) {
	if err := validateParams(params); err != nil {
		return "", err
	}

	var b strings.Builder

	b.WriteString("(version 1)\n")
	b.WriteString("(deny default)\n\n")

	// Needed for any subprocess use; not configurable.
	b.WriteString("; Process operations\n")
	b.WriteString("(allow process-fork)\n")
	b.WriteString("(allow process-exec)\n")
	b.WriteString("(allow signal (target self))\n\n")

	// Required for basic OS functionality; not configurable.
	b.WriteString("; System baseline\n")
	b.WriteString("(allow file-read-metadata)\n")
	b.WriteString("(allow sysctl-read)\n")
	b.WriteString("(allow file-ioctl (subpath \"/dev\"))\n")
	b.WriteString("(allow mach-lookup)\n")

	b.WriteString("\n; Allowed read paths\n")
	// Root itself must be readable for path traversal to work at all.
	b.WriteString("(allow file-read* (literal \"/\"))\n")
	for _, path := range params.AllowRead {
		writeRule(&b, "allow", "file-read*", path)
	}

	if len(params.AllowListDirs) > 0 {
		b.WriteString("\n; Directory listing only (no file contents, no descendants)\n")
		for _, path := range params.AllowListDirs {
			fmt.Fprintf(&b, "(allow file-read-data (literal \"%s\"))\n", path)
		}
	}

	// Emitted after the allow rules so they win for nested paths.
	if len(params.DenyRead) > 0 {
		b.WriteString("\n; Denied read paths\n")
		for _, path := range params.DenyRead {
			writeRule(&b, "deny", "file-read*", path)
		}
	}

	if params.WorkingDir != "" {
		b.WriteString("\n; Working directory (full access)\n")
		fmt.Fprintf(&b, "(allow file* (subpath \"%s\"))\n", params.WorkingDir)
	}

	if len(params.AllowWrite) > 0 {
		b.WriteString("\n; Allowed write paths\n")
		for _, path := range params.AllowWrite {
			writeWriteRule(&b, path)
		}
	}

	// Interactive line editing needs the pty; tools expect /dev basics.
	b.WriteString("\n; Device access\n")
	b.WriteString("(allow file-read* (subpath \"/dev\"))\n")
	b.WriteString("(allow file-write* (subpath \"/dev\"))\n")
	b.WriteString("(allow pseudo-tty)\n")

	b.WriteString("\n; Network access\n")
	switch params.NetworkMode {
	case config.NetworkOnline:
		b.WriteString("(allow network*)\n")
	case config.NetworkLocalhost:
		// The enforcement point accepts the symbolic localhost token,
		// not arbitrary IP literals.
		b.WriteString("(allow network-outbound (remote ip \"localhost:*\"))\n")
		b.WriteString("(allow network-inbound (local ip \"localhost:*\"))\n")
	default:
		b.WriteString("; Network disabled (offline mode)\n")
	}

	if params.RawRules != "" {
		b.WriteString("\n; Custom rules\n")
		b.WriteString(params.RawRules)
		if !strings.HasSuffix(params.RawRules, "\n") {
			b.WriteByte('\n')
		}
	}

	return b.String(), nil
}

func validateParams(params *Params) error {
	if params.WorkingDir != "" {
		if err := ValidatePath(params.WorkingDir); err != nil {
			return err
		}
	}
	for _, list := range [][]string{
		params.AllowRead,
		params.DenyRead,
		params.AllowWrite,
		params.AllowListDirs,
	} {
		for _, path := range list {
			if err := ValidatePath(path); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeRule emits one read rule: subpath filter for literal paths, regex
// filter for globs.
func writeRule(b *strings.Builder, action, operation, path string) {
	if IsGlob(path) {
		fmt.Fprintf(b, "(%s %s (regex #\"%s\"))\n", action, operation, GlobToRegex(path))
	} else {
		fmt.Fprintf(b, "(%s %s (subpath \"%s\"))\n", action, operation, path)
	}
}

// writeWriteRule emits one write rule. A concrete existing file gets a
// regex rule covering the file plus its .lock sibling, so toolchains that
// guard edits with lock files keep working; everything else is a subpath
// (or regex, for globs).
func writeWriteRule(b *strings.Builder, path string) {
	if IsGlob(path) {
		fmt.Fprintf(b, "(allow file-write* (regex #\"%s\"))\n", GlobToRegex(path))
		return
	}
	if info, err := statPath(path); err == nil && !info.IsDir() {
		fmt.Fprintf(b, "(allow file-write* (regex #\"%s\"))\n", GlobToRegex(path)+`(\.lock)?$`)
		return
	}
	fmt.Fprintf(b, "(allow file-write* (subpath \"%s\"))\n", path)
}
