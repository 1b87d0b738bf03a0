package config

// Merge combines a global and a project configuration, project taking
// precedence. The caller decides whether to merge at all: when the project
// config sets inherit_global=false it is used standalone and Merge is
// never called.
//
//   - network mode: project's explicit setting > project's default > global's default
//   - profile lists: union, global entries first (base filtered out of
//     global's defaults when the project disables base inheritance)
//   - filesystem/env lists: duplicate-free unions, global entries first
//   - set_env: project wins per key
//   - profile detection rules stay global
func Merge(global, project *Config) *Config {
	return &Config{
		Sandbox:    mergeSandbox(&global.Sandbox, &project.Sandbox),
		Filesystem: mergeFilesystem(&global.Filesystem, &project.Filesystem),
		Shell:      mergeShell(&global.Shell, &project.Shell),
		Profiles:   global.Profiles,
	}
}

func mergeSandbox(global, project *SandboxConfig) SandboxConfig {
	globalProfiles := global.DefaultProfiles
	if !project.InheritBase {
		filtered := make([]string, 0, len(globalProfiles))
		for _, p := range globalProfiles {
			if p != "base" {
				filtered = append(filtered, p)
			}
		}
		globalProfiles = filtered
	}

	network := project.DefaultNetwork
	if project.Network.IsSet() {
		network = project.Network
	}

	shell := project.Shell
	if shell == "" {
		shell = global.Shell
	}
	logFile := project.LogFile
	if logFile == "" {
		logFile = global.LogFile
	}

	return SandboxConfig{
		DefaultNetwork:  network,
		DefaultProfiles: unionStrings(globalProfiles, project.DefaultProfiles),
		Shell:           shell,
		PromptIndicator: project.PromptIndicator,
		LogFile:         logFile,
		InheritGlobal:   project.InheritGlobal,
		InheritBase:     project.InheritBase,
		Profiles:        unionStrings(globalProfiles, project.Profiles),
		Network:         project.Network,
	}
}

func mergeFilesystem(global, project *FilesystemConfig) FilesystemConfig {
	return FilesystemConfig{
		AllowRead:     unionStrings(global.AllowRead, project.AllowRead),
		DenyRead:      unionStrings(global.DenyRead, project.DenyRead),
		AllowWrite:    unionStrings(global.AllowWrite, project.AllowWrite),
		AllowListDirs: unionStrings(global.AllowListDirs, project.AllowListDirs),
	}
}

func mergeShell(global, project *ShellConfig) ShellConfig {
	var setEnv map[string]string
	if len(global.SetEnv) > 0 || len(project.SetEnv) > 0 {
		setEnv = make(map[string]string, len(global.SetEnv)+len(project.SetEnv))
		for k, v := range global.SetEnv {
			setEnv[k] = v
		}
		for k, v := range project.SetEnv {
			setEnv[k] = v
		}
	}
	return ShellConfig{
		PassEnv: unionStrings(global.PassEnv, project.PassEnv),
		DenyEnv: unionStrings(global.DenyEnv, project.DenyEnv),
		SetEnv:  setEnv,
	}
}

// unionStrings returns a ∪ b with first-seen ordering and no duplicates.
func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	result := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			result = append(result, s)
		}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			result = append(result, s)
		}
	}
	return result
}
