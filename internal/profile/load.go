package profile

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/sxtool/sx/internal/diag"
)

// UserProfileDir returns ~/.config/sx/profiles.
func UserProfileDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sx", "profiles"), nil
}

// FromFile loads a profile from a TOML file.
func FromFile(path string) (Profile, error) {
	var p Profile
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return p, err
	}
	return p, nil
}

// LoadAll resolves each name into a profile, preserving order. Resolution
// per name: builtin table, then customDir/{name}.toml, then the user
// profile directory. Unknown names warn and substitute the permissive
// builtin fallback instead of aborting; load failures warn and skip.
func LoadAll(names []string, customDir string) []Profile {
	profiles := make([]Profile, 0, len(names))
	for _, name := range names {
		if p, ok := load(name, customDir); ok {
			profiles = append(profiles, p)
		}
	}
	return profiles
}

func load(name, customDir string) (Profile, bool) {
	p, ok, err := Builtin(name)
	if err != nil {
		// Broken embedded table: a defect, surfaced loudly.
		diag.Errorf("failed to load builtin profile %q: %v", name, err)
		return Profile{}, false
	}
	if ok {
		return p, true
	}

	dirs := []string{}
	if customDir != "" {
		dirs = append(dirs, customDir)
	}
	if userDir, err := UserProfileDir(); err == nil {
		dirs = append(dirs, userDir)
	}
	for _, dir := range dirs {
		path := filepath.Join(dir, name+".toml")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		p, err := FromFile(path)
		if err != nil {
			diag.Warnf("failed to load profile %q from %s: %v", name, path, err)
			return Profile{}, false
		}
		return p, true
	}

	diag.Warnf("unknown profile %q, falling back to %q", name, FallbackName)
	fallback, ok, err := Builtin(FallbackName)
	if err != nil || !ok {
		diag.Errorf("failed to load fallback profile %q: %v", FallbackName, err)
		return Profile{}, false
	}
	return fallback, true
}
