package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/cobra"

	"github.com/sxtool/sx/internal/config"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		profiles []string
		command  []string
	}{
		{"profiles only", []string{"node", "gpg"}, []string{"node", "gpg"}, nil},
		{"command only", []string{"--", "npm", "test"}, []string{}, []string{"npm", "test"}},
		{"both", []string{"node", "--", "npm", "test"}, []string{"node"}, []string{"npm", "test"}},
		{"neither", nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			if err := cmd.Flags().Parse(tt.argv); err != nil {
				t.Fatal(err)
			}
			profiles, command := splitArgs(cmd, cmd.Flags().Args())
			if !sameStrings(profiles, tt.profiles) {
				t.Errorf("profiles = %v, want %v", profiles, tt.profiles)
			}
			if !sameStrings(command, tt.command) {
				t.Errorf("command = %v, want %v", command, tt.command)
			}
		})
	}
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEffectiveConfigStandalone(t *testing.T) {
	defer func() { flagConfig, flagNoConfig = "", false }()

	globalPath := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, globalPath, `
[sandbox]
default_profiles = ["base", "gpg"]
network = "online"

[filesystem]
allow_read = ["/opt/global"]
deny_read = ["/opt/global-secrets"]
`)
	flagConfig = globalPath

	projectDir := t.TempDir()
	writeFile(t, filepath.Join(projectDir, config.ProjectConfigName), `
[sandbox]
inherit_global = false
profiles = ["node"]

[filesystem]
allow_read = ["/srv/project"]
`)

	cfg, dir, err := effectiveConfig(projectDir)
	if err != nil {
		t.Fatalf("effectiveConfig() error: %v", err)
	}
	if dir != projectDir {
		t.Errorf("project dir = %q, want %q", dir, projectDir)
	}
	if !reflect.DeepEqual(cfg.Filesystem.AllowRead, []string{"/srv/project"}) {
		t.Errorf("allow_read = %v, want only project entries", cfg.Filesystem.AllowRead)
	}
	if len(cfg.Filesystem.DenyRead) != 0 {
		t.Errorf("deny_read = %v, global entries leaked in", cfg.Filesystem.DenyRead)
	}
	if !reflect.DeepEqual(cfg.Sandbox.Profiles, []string{"node"}) {
		t.Errorf("profiles = %v, want only project entries", cfg.Sandbox.Profiles)
	}
	if !reflect.DeepEqual(cfg.Sandbox.DefaultProfiles, []string{"base"}) {
		t.Errorf("default_profiles = %v, global entries leaked in", cfg.Sandbox.DefaultProfiles)
	}
	if cfg.Sandbox.Network.IsSet() {
		t.Errorf("network = %q, global setting leaked in", cfg.Sandbox.Network)
	}
}

func TestCollectProfileNames(t *testing.T) {
	cfg := config.Default()
	cfg.Sandbox.DefaultProfiles = []string{"base", "gpg"}
	cfg.Sandbox.Profiles = []string{"node"}

	got := collectProfileNames(cfg, t.TempDir(), []string{"online", "node"})
	want := []string{"base", "gpg", "node", "online"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("collectProfileNames() = %v, want %v", got, want)
	}
}

func TestCollectProfileNamesNoBase(t *testing.T) {
	cfg := config.Default()
	cfg.Sandbox.InheritBase = false
	cfg.Sandbox.DefaultProfiles = nil

	got := collectProfileNames(cfg, t.TempDir(), []string{"online"})
	want := []string{"online"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("collectProfileNames() = %v, want %v", got, want)
	}

	// Disabling base inheritance drops base from the defaulted list too.
	cfg = config.Default()
	cfg.Sandbox.InheritBase = false
	got = collectProfileNames(cfg, t.TempDir(), nil)
	if len(got) != 0 {
		t.Errorf("collectProfileNames() = %v, want none", got)
	}
}

func TestCollectProfileNamesAutoDetect(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "package.json"))

	cfg := config.Default()
	cfg.Sandbox.DefaultProfiles = nil
	cfg.Sandbox.InheritBase = false
	cfg.Profiles.AutoDetect = true

	got := collectProfileNames(cfg, dir, nil)
	want := []string{"node"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("collectProfileNames() = %v, want %v", got, want)
	}
}

func TestAppendAncestors(t *testing.T) {
	got := appendAncestors([]string{"/Users"}, "/Users/me/src/proj")
	want := []string{"/Users", "/Users/me/src", "/Users/me"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("appendAncestors() = %v, want %v", got, want)
	}
}

func TestConfigTemplateRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ProjectConfigName)
	writeFile(t, path, configTemplate)

	cfg, err := config.LoadProject(dir)
	if err != nil {
		t.Fatalf("template does not decode: %v", err)
	}
	if !cfg.Sandbox.InheritGlobal || !cfg.Sandbox.InheritBase {
		t.Errorf("template inherit flags = %+v", cfg.Sandbox)
	}
	if cfg.Sandbox.Network != config.NetworkOffline {
		t.Errorf("template network = %q", cfg.Sandbox.Network)
	}
	if len(cfg.Sandbox.Profiles) != 0 || len(cfg.Filesystem.AllowRead) != 0 {
		t.Errorf("template lists not empty: %+v", cfg)
	}
}

func TestNetworkOverride(t *testing.T) {
	restore := func() { flagOffline, flagOnline, flagLocalhost = false, false, false }
	defer restore()

	restore()
	if got := networkOverride(); got.IsSet() {
		t.Errorf("no flags should give unset mode, got %q", got)
	}
	flagLocalhost = true
	if got := networkOverride(); got != config.NetworkLocalhost {
		t.Errorf("networkOverride() = %q", got)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	writeFile(t, path, "")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
