package sandbox

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sxtool/sx/internal/config"
)

func compileOrFail(t *testing.T, params *Params) string {
	t.Helper()
	policy, err := Compile(params)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	return policy
}

func TestCompileHeader(t *testing.T) {
	policy := compileOrFail(t, &Params{})
	if !strings.HasPrefix(policy, "(version 1)\n(deny default)\n") {
		t.Errorf("policy does not start with version and default deny:\n%s", policy)
	}
	for _, rule := range []string{
		"(allow process-fork)",
		"(allow process-exec)",
		"(allow signal (target self))",
		"(allow file-read-metadata)",
		"(allow sysctl-read)",
		"(allow mach-lookup)",
		`(allow file-read* (literal "/"))`,
		"(allow pseudo-tty)",
	} {
		if !strings.Contains(policy, rule) {
			t.Errorf("policy missing %q", rule)
		}
	}
}

func TestCompileOrdering(t *testing.T) {
	params := &Params{
		WorkingDir:  "/proj",
		NetworkMode: config.NetworkOffline,
		AllowRead:   []string{"/usr", "/bin"},
		DenyRead:    []string{"/proj/.ssh"},
	}
	policy := compileOrFail(t, params)

	allowUsr := strings.Index(policy, `(allow file-read* (subpath "/usr"))`)
	allowBin := strings.Index(policy, `(allow file-read* (subpath "/bin"))`)
	denySSH := strings.Index(policy, `(deny file-read* (subpath "/proj/.ssh"))`)
	workdir := strings.Index(policy, `(allow file* (subpath "/proj"))`)

	for name, idx := range map[string]int{
		"allow /usr": allowUsr, "allow /bin": allowBin,
		"deny .ssh": denySSH, "workdir": workdir,
	} {
		if idx < 0 {
			t.Fatalf("policy missing %s rule:\n%s", name, policy)
		}
	}
	// Deny rules must come after the allows they override: the enforcement
	// point takes the last matching rule.
	if denySSH < allowUsr || denySSH < allowBin {
		t.Error("deny rule emitted before allow rules")
	}
	if workdir < denySSH {
		t.Error("working directory rule emitted before deny rules")
	}
}

func TestCompileDeterministic(t *testing.T) {
	params := &Params{
		WorkingDir:  "/proj",
		NetworkMode: config.NetworkLocalhost,
		AllowRead:   []string{"/usr", "/opt", "/tmp/*.log"},
		DenyRead:    []string{"/proj/secrets"},
		AllowWrite:  []string{"/tmp"},
		RawRules:    "(allow iokit-open)",
	}
	first := compileOrFail(t, params)
	second := compileOrFail(t, params)
	if first != second {
		t.Error("identical params produced different documents")
	}
}

func TestCompileGlobRules(t *testing.T) {
	policy := compileOrFail(t, &Params{
		AllowRead:  []string{"/tmp/*.log"},
		AllowWrite: []string{"/cache/v?"},
	})
	if !strings.Contains(policy, `(allow file-read* (regex #"^/tmp/.*\.log"))`) {
		t.Errorf("glob read rule not translated:\n%s", policy)
	}
	if !strings.Contains(policy, `(allow file-write* (regex #"^/cache/v."))`) {
		t.Errorf("glob write rule not translated:\n%s", policy)
	}
}

func TestCompileWriteRules(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.json")
	if err := os.WriteFile(file, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	policy := compileOrFail(t, &Params{AllowWrite: []string{dir, file}})

	if !strings.Contains(policy, `(allow file-write* (subpath "`+dir+`"))`) {
		t.Errorf("directory write rule missing:\n%s", policy)
	}
	// A concrete file gets a pattern covering itself plus a .lock sibling.
	want := `(allow file-write* (regex #"` + GlobToRegex(file) + `(\.lock)?$"))`
	if !strings.Contains(policy, want) {
		t.Errorf("file write rule missing %q:\n%s", want, policy)
	}
}

func TestCompileWriteRuleMissingFile(t *testing.T) {
	// A path that does not exist is treated as a directory target.
	policy := compileOrFail(t, &Params{AllowWrite: []string{"/no/such/path"}})
	if !strings.Contains(policy, `(allow file-write* (subpath "/no/such/path"))`) {
		t.Errorf("missing path should compile to a subpath rule:\n%s", policy)
	}
}

func TestCompileListOnlyDirs(t *testing.T) {
	policy := compileOrFail(t, &Params{AllowListDirs: []string{"/Users/me", "/Users"}})
	usersMe := strings.Index(policy, `(allow file-read-data (literal "/Users/me"))`)
	users := strings.Index(policy, `(allow file-read-data (literal "/Users"))`)
	if usersMe < 0 || users < 0 {
		t.Fatalf("list-only rules missing:\n%s", policy)
	}
	if usersMe > users {
		t.Error("list-only rules not in input order")
	}
	if strings.Contains(policy, `(allow file-read* (subpath "/Users"))`) {
		t.Error("list-only dir leaked a full read rule")
	}
}

func TestCompileNetworkModes(t *testing.T) {
	tests := []struct {
		mode     config.NetworkMode
		contains []string
		excludes []string
	}{
		{
			mode:     config.NetworkOffline,
			contains: []string{"; Network disabled (offline mode)"},
			excludes: []string{"(allow network"},
		},
		{
			mode:     config.NetworkOnline,
			contains: []string{"(allow network*)"},
		},
		{
			mode: config.NetworkLocalhost,
			contains: []string{
				`(allow network-outbound (remote ip "localhost:*"))`,
				`(allow network-inbound (local ip "localhost:*"))`,
			},
			excludes: []string{"(allow network*)"},
		},
		{
			// Unset mode behaves like offline.
			mode:     "",
			contains: []string{"; Network disabled (offline mode)"},
			excludes: []string{"(allow network"},
		},
	}
	for _, tt := range tests {
		policy := compileOrFail(t, &Params{NetworkMode: tt.mode})
		for _, want := range tt.contains {
			if !strings.Contains(policy, want) {
				t.Errorf("mode %q: missing %q", tt.mode, want)
			}
		}
		for _, unwanted := range tt.excludes {
			if strings.Contains(policy, unwanted) {
				t.Errorf("mode %q: unexpected %q", tt.mode, unwanted)
			}
		}
	}
}

func TestCompileRawRules(t *testing.T) {
	policy := compileOrFail(t, &Params{RawRules: "(allow iokit-open)"})
	if !strings.HasSuffix(policy, "; Custom rules\n(allow iokit-open)\n") {
		t.Errorf("raw rules not appended at the end:\n%s", policy)
	}
}

func TestCompileInvalidPathAborts(t *testing.T) {
	params := &Params{
		AllowRead: []string{"/fine", `/evil"`},
	}
	policy, err := Compile(params)
	if err == nil {
		t.Fatal("Compile() accepted an invalid path")
	}
	var pathErr *InvalidPathError
	if !errors.As(err, &pathErr) {
		t.Fatalf("error type = %T, want *InvalidPathError", err)
	}
	if policy != "" {
		t.Error("partial document returned alongside error")
	}
}

func TestCompileBalancedParens(t *testing.T) {
	dir := t.TempDir()
	policy := compileOrFail(t, &Params{
		WorkingDir:    dir,
		NetworkMode:   config.NetworkLocalhost,
		AllowRead:     []string{"/usr", "/tmp/*.log"},
		DenyRead:      []string{"/secrets"},
		AllowWrite:    []string{dir},
		AllowListDirs: []string{"/Users"},
	})
	opens, closes := strings.Count(policy, "("), strings.Count(policy, ")")
	if opens != closes {
		t.Errorf("unbalanced parentheses: %d open, %d close", opens, closes)
	}
}
