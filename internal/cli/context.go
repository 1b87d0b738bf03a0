package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sxtool/sx/internal/config"
	"github.com/sxtool/sx/internal/detect"
	"github.com/sxtool/sx/internal/diag"
	"github.com/sxtool/sx/internal/pathutil"
	"github.com/sxtool/sx/internal/profile"
	"github.com/sxtool/sx/internal/sandbox"
)

// projectProfileDirName is where a project can keep its own profiles,
// relative to the directory holding its .sandbox.toml.
const projectProfileDirName = ".sandbox-profiles"

// runContext is everything one invocation needs: compiled-policy input
// plus the execution settings that do not go through the policy.
type runContext struct {
	Params   *sandbox.Params
	Shell    string
	ShellEnv *config.ShellConfig
	// Persistent violation log for traced runs. Empty disables.
	LogFile string
	// Show the mode indicator in interactive prompts.
	PromptIndicator bool
}

// buildContext resolves configuration, profiles, and CLI overrides into a
// runContext. cliProfiles are the positional profile names.
func buildContext(cliProfiles []string) (*runContext, error) {
	wd, err := workingDir()
	if err != nil {
		return nil, err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg, projectDir, err := effectiveConfig(wd)
	if err != nil {
		return nil, err
	}

	names := collectProfileNames(cfg, wd, cliProfiles)
	if flagVerbose {
		diag.Tracef("profiles: %v", names)
	}

	customDir := ""
	if projectDir != "" {
		customDir = filepath.Join(projectDir, projectProfileDirName)
	}
	composed := profile.Compose(profile.LoadAll(names, customDir))

	mode := networkOverride()
	if !mode.IsSet() {
		mode = composed.NetworkMode
	}
	if !mode.IsSet() {
		mode = cfg.Sandbox.Network
	}
	if !mode.IsSet() {
		mode = cfg.Sandbox.DefaultNetwork
	}
	if !mode.IsSet() {
		mode = config.NetworkOffline
	}

	listDirs := append([]string(nil), composed.Filesystem.AllowListDirs...)
	listDirs = append(listDirs, cfg.Filesystem.AllowListDirs...)
	listDirs = pathutil.ExpandAll(listDirs)
	if len(listDirs) > 0 {
		// Runtimes that walk up from the working directory during module
		// resolution need to list its ancestors too.
		listDirs = appendAncestors(listDirs, wd)
	}

	params := &sandbox.Params{
		WorkingDir:  wd,
		HomeDir:     home,
		NetworkMode: mode,
		AllowRead: pathutil.ExpandAll(concat(
			composed.Filesystem.AllowRead,
			cfg.Filesystem.AllowRead,
			flagAllowRead,
		)),
		DenyRead: pathutil.ExpandAll(concat(
			composed.Filesystem.DenyRead,
			cfg.Filesystem.DenyRead,
			flagDenyRead,
		)),
		AllowWrite: pathutil.ExpandAll(concat(
			composed.Filesystem.AllowWrite,
			cfg.Filesystem.AllowWrite,
			flagAllowWrite,
		)),
		AllowListDirs: listDirs,
		RawRules:      composed.Seatbelt.Raw,
	}

	shellEnv := &config.ShellConfig{
		PassEnv: unionInOrder(composed.Shell.PassEnv, cfg.Shell.PassEnv),
		DenyEnv: unionInOrder(composed.Shell.DenyEnv, cfg.Shell.DenyEnv),
		SetEnv:  cfg.Shell.SetEnv,
	}

	logFile := cfg.Sandbox.LogFile
	if logFile != "" {
		logFile = pathutil.Expand(logFile)
	}

	return &runContext{
		Params:          params,
		Shell:           cfg.Sandbox.Shell,
		ShellEnv:        shellEnv,
		LogFile:         logFile,
		PromptIndicator: cfg.Sandbox.PromptIndicator,
	}, nil
}

// effectiveConfig loads and merges configuration. Returns the directory
// holding the project config, or "" when there is none.
func effectiveConfig(wd string) (*config.Config, string, error) {
	if flagNoConfig {
		return config.Default(), "", nil
	}

	global, err := config.LoadGlobal(flagConfig)
	if err != nil {
		return nil, "", err
	}

	projectPath, found := config.FindProjectConfig(wd)
	if !found {
		return global, "", nil
	}
	projectDir := filepath.Dir(projectPath)
	project, err := config.LoadProject(projectDir)
	if err != nil {
		return nil, "", err
	}
	if project == nil {
		return global, "", nil
	}
	if !project.Sandbox.InheritGlobal {
		return project, projectDir, nil
	}
	return config.Merge(global, project), projectDir, nil
}

// collectProfileNames assembles the profile list in precedence order:
// base (unless disabled), configured defaults, project profiles, the
// auto-detected toolchain, then CLI positionals. Duplicates are dropped,
// first occurrence wins.
func collectProfileNames(cfg *config.Config, wd string, cliProfiles []string) []string {
	var names []string
	if cfg.Sandbox.InheritBase {
		names = append(names, "base")
	}
	for _, n := range cfg.Sandbox.DefaultProfiles {
		// Disabling base inheritance also drops it from the defaulted
		// list, or a standalone project config could never shed it.
		if n == "base" && !cfg.Sandbox.InheritBase {
			continue
		}
		names = append(names, n)
	}
	names = append(names, cfg.Sandbox.Profiles...)
	if cfg.Profiles.AutoDetect {
		if detected := detect.DetectWithRules(wd, cfg.Profiles.Detect); detected != "" {
			if flagVerbose {
				diag.Tracef("detected project type: %s", detected)
			}
			names = append(names, detected)
		}
	}
	names = append(names, cliProfiles...)

	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// appendAncestors adds every proper ancestor of dir (excluding /) that is
// not already present.
func appendAncestors(paths []string, dir string) []string {
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		seen[p] = struct{}{}
	}
	for d := filepath.Dir(dir); d != "/" && d != "."; d = filepath.Dir(d) {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			paths = append(paths, d)
		}
	}
	return paths
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

func unionInOrder(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, s := range concat(a, b) {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
