package shell

import (
	"path"
	"sort"
	"strings"

	"github.com/sxtool/sx/internal/config"
)

// FilterEnv builds the environment passed into the sandbox from the
// current environment and the shell config. Deny patterns always win over
// pass patterns; an empty pass list passes everything not denied. Set-env
// entries are applied last, in sorted key order for determinism.
// Patterns match variable names with glob syntax (LC_*, AWS_*).
func FilterEnv(environ []string, cfg *config.ShellConfig) []string {
	out := make([]string, 0, len(environ)+len(cfg.SetEnv))
	for _, kv := range environ {
		name, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if matchesAny(name, cfg.DenyEnv) {
			continue
		}
		if len(cfg.PassEnv) > 0 && !matchesAny(name, cfg.PassEnv) {
			continue
		}
		if _, overridden := cfg.SetEnv[name]; overridden {
			continue
		}
		out = append(out, kv)
	}

	keys := make([]string, 0, len(cfg.SetEnv))
	for k := range cfg.SetEnv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+cfg.SetEnv[k])
	}
	return out
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := path.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
