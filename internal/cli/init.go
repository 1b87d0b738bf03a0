package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sxtool/sx/internal/config"
	"github.com/sxtool/sx/internal/diag"
)

// configTemplate is written by sx init. Every key decodes through the
// config schema; commented lines document the defaults.
const configTemplate = `# Project sandbox configuration.
# Settings here are merged on top of ~/.config/sx/config.toml.

[sandbox]
# Inherit the global configuration. Set false for a standalone config.
inherit_global = true
# Include the base profile (system paths, sensitive-path denials).
inherit_base = true
# Network mode for this project: "offline", "online", or "localhost".
network = "offline"
# Additional profiles, applied after the defaults.
profiles = []

[filesystem]
# Paths readable beyond the profile set. ~ and $VARS expand.
allow_read = []
# Paths denied even when an allow rule covers them.
deny_read = []
# Paths writable outside the working directory.
allow_write = []

[shell]
# Environment variables passed into the sandbox (glob patterns).
# Empty passes everything not denied.
pass_env = []
deny_env = []
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a " + config.ProjectConfigName + " template to the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, err := workingDir()
		if err != nil {
			return err
		}
		path := filepath.Join(wd, config.ProjectConfigName)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := os.WriteFile(path, []byte(configTemplate), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		diag.Tracef("wrote %s", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
