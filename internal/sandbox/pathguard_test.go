package sandbox

import (
	"errors"
	"testing"
)

func TestValidatePath(t *testing.T) {
	valid := []string{
		"/usr/local/bin",
		"/path with spaces/file",
		"/päth/ünïcode",
		"~/projects",
		"/tmp/*.log",
		"",
	}
	for _, path := range valid {
		if err := ValidatePath(path); err != nil {
			t.Errorf("ValidatePath(%q) = %v, want nil", path, err)
		}
	}

	invalid := []struct {
		path   string
		reason string
	}{
		{"/tmp/\x00evil", "contains NUL byte"},
		{`/tmp/") (allow default) ("`, "contains double quote"},
		{"/tmp/evil\rpath", "contains carriage return"},
		{"/tmp/evil\npath", "contains newline"},
	}
	for _, tt := range invalid {
		err := ValidatePath(tt.path)
		if err == nil {
			t.Errorf("ValidatePath(%q) = nil, want error", tt.path)
			continue
		}
		var pathErr *InvalidPathError
		if !errors.As(err, &pathErr) {
			t.Errorf("ValidatePath(%q) error type = %T, want *InvalidPathError", tt.path, err)
			continue
		}
		if pathErr.Reason != tt.reason {
			t.Errorf("ValidatePath(%q) reason = %q, want %q", tt.path, pathErr.Reason, tt.reason)
		}
		if pathErr.Path != tt.path {
			t.Errorf("ValidatePath(%q) recorded path %q", tt.path, pathErr.Path)
		}
	}
}

func TestIsGlob(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/usr/local", false},
		{"/tmp/*.log", true},
		{"/cache/v?", true},
		{"", false},
		{"/literal[brackets]", false},
	}
	for _, tt := range tests {
		if got := IsGlob(tt.path); got != tt.want {
			t.Errorf("IsGlob(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestGlobToRegex(t *testing.T) {
	tests := []struct {
		glob string
		want string
	}{
		{"/tmp/*.log", `^/tmp/.*\.log`},
		{"/cache/v?", `^/cache/v.`},
		{"/a/b", `^/a/b`},
		{"/dots.and+plus", `^/dots\.and\+plus`},
		{"/pa(ren)s", `^/pa\(ren\)s`},
		{"/br[ack]ets", `^/br\[ack\]ets`},
		{"/cur{ly}", `^/cur\{ly\}`},
		{"/pipe|caret^dollar$", `^/pipe\|caret\^dollar\$`},
		{`/back\slash`, `^/back\\slash`},
		{"/Users/*/Library/Caches", `^/Users/.*/Library/Caches`},
	}
	for _, tt := range tests {
		if got := GlobToRegex(tt.glob); got != tt.want {
			t.Errorf("GlobToRegex(%q) = %q, want %q", tt.glob, got, tt.want)
		}
	}
}
