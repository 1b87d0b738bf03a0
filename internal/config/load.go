package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProjectConfigName is the fixed per-directory config file name.
const ProjectConfigName = ".sandbox.toml"

// ParseError reports a malformed config file. It is always a hard failure:
// a corrupt configuration must not silently produce an under- or
// over-permissive policy.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DefaultGlobalPath returns ~/.config/sx/config.toml, following the XDG
// convention common to CLI tools.
func DefaultGlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sx", "config.toml"), nil
}

// LoadGlobal loads the global configuration. An empty path means the
// default location. A missing file yields the default configuration.
func LoadGlobal(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultGlobalPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}
	return loadFile(path, true)
}

// LoadProject loads .sandbox.toml from dir. Returns nil if absent.
func LoadProject(dir string) (*Config, error) {
	path := filepath.Join(dir, ProjectConfigName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return loadFile(path, false)
}

// FindProjectConfig walks up from startDir looking for .sandbox.toml.
func FindProjectConfig(startDir string) (string, bool) {
	dir := startDir
	for {
		path := filepath.Join(dir, ProjectConfigName)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func loadFile(path string, missingOK bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if missingOK && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return cfg, nil
}
