package sandbox

import (
	"fmt"
	"strings"
)

// InvalidPathError reports a path that cannot be embedded in a policy
// document without risking rule injection. Compilation aborts on it;
// dangerous characters are never escaped or stripped.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// ValidatePath rejects paths containing characters that would break the
// quoting of a generated rule: NUL, double quote, CR, LF.
func ValidatePath(path string) error {
	for _, pair := range []struct {
		char   rune
		reason string
	}{
		{0, "contains NUL byte"},
		{'"', "contains double quote"},
		{'\r', "contains carriage return"},
		{'\n', "contains newline"},
	} {
		if strings.ContainsRune(path, pair.char) {
			return &InvalidPathError{Path: path, Reason: pair.reason}
		}
	}
	return nil
}

// IsGlob reports whether the path contains glob metacharacters. Glob
// paths compile to regex filters; literal paths compile to subpath or
// literal filters.
func IsGlob(path string) bool {
	return strings.ContainsAny(path, "*?")
}

// regexMeta are the regex metacharacters that must be escaped so they
// match literally in the translated pattern.
const regexMeta = `.+()[]{}|^$\`

// GlobToRegex translates a glob path into the regex syntax of the policy
// matcher: * becomes any sequence, ? any single character, everything
// else matches literally. The pattern is anchored at the start.
func GlobToRegex(glob string) string {
	var b strings.Builder
	b.Grow(len(glob) + 8)
	b.WriteByte('^')
	for _, r := range glob {
		switch {
		case r == '*':
			b.WriteString(".*")
		case r == '?':
			b.WriteByte('.')
		case strings.ContainsRune(regexMeta, r):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
