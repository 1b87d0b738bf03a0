package config

import "fmt"

// NetworkMode controls what network access the sandbox grants.
// The zero value means "not specified" and is only meaningful on fields
// that are optional overrides (Profile.NetworkMode, SandboxConfig.Network).
type NetworkMode string

const (
	NetworkOffline   NetworkMode = "offline"
	NetworkOnline    NetworkMode = "online"
	NetworkLocalhost NetworkMode = "localhost"
)

// IsSet reports whether the mode carries an explicit value.
func (m NetworkMode) IsSet() bool { return m != "" }

// UnmarshalText validates the TOML representation of a network mode.
func (m *NetworkMode) UnmarshalText(text []byte) error {
	switch s := NetworkMode(text); s {
	case NetworkOffline, NetworkOnline, NetworkLocalhost:
		*m = s
		return nil
	default:
		return fmt.Errorf("unknown network mode %q (expected offline, online, or localhost)", text)
	}
}

// Config is the persisted user/project configuration. Two instances may
// exist at once (global and project); Merge combines them into the
// effective configuration.
type Config struct {
	Sandbox    SandboxConfig    `toml:"sandbox"`
	Filesystem FilesystemConfig `toml:"filesystem"`
	Shell      ShellConfig      `toml:"shell"`
	Profiles   ProfilesConfig   `toml:"profiles"`
}

// SandboxConfig holds sandbox selection settings.
type SandboxConfig struct {
	// Default network mode when nothing more specific applies.
	DefaultNetwork NetworkMode `toml:"default_network"`
	// Profiles always applied.
	DefaultProfiles []string `toml:"default_profiles"`
	// Shell to launch for interactive sessions. Empty means $SHELL.
	Shell string `toml:"shell"`
	// Show the sandbox indicator in the shell prompt.
	PromptIndicator bool `toml:"prompt_indicator"`
	// Violation log file path.
	LogFile string `toml:"log_file"`
	// Inherit from the global config (project config only).
	InheritGlobal bool `toml:"inherit_global"`
	// Include the base profile. False gives full custom control.
	InheritBase bool `toml:"inherit_base"`
	// Additional profiles for this project (project config only).
	Profiles []string `toml:"profiles"`
	// Explicit network mode for this project (project config only).
	Network NetworkMode `toml:"network"`
}

// FilesystemConfig lists path rules layered on top of profiles.
type FilesystemConfig struct {
	AllowRead  []string `toml:"allow_read"`
	DenyRead   []string `toml:"deny_read"`
	AllowWrite []string `toml:"allow_write"`
	// Directories where only listing (readdir) is allowed, not file
	// contents or descendants. Needed by runtimes that probe ancestor
	// directories during module resolution.
	AllowListDirs []string `toml:"allow_list_dirs"`
}

// ShellConfig controls the environment passed into the sandbox.
type ShellConfig struct {
	PassEnv []string          `toml:"pass_env"`
	DenyEnv []string          `toml:"deny_env"`
	SetEnv  map[string]string `toml:"set_env"`
}

// ProfilesConfig controls profile auto-detection.
type ProfilesConfig struct {
	AutoDetect bool `toml:"auto_detect"`
	// Profile name -> marker files that trigger it.
	Detect map[string][]string `toml:"detect"`
}

// Default returns a Config with every default made explicit. Loading
// decodes on top of this value so absent TOML keys keep their defaults.
func Default() *Config {
	return &Config{
		Sandbox: SandboxConfig{
			DefaultNetwork:  NetworkOffline,
			DefaultProfiles: []string{"base"},
			PromptIndicator: true,
			InheritGlobal:   true,
			InheritBase:     true,
		},
	}
}
