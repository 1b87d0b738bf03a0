// Package cli wires the command line onto the config, profile, and
// sandbox layers.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sxtool/sx/internal/config"
	"github.com/sxtool/sx/internal/diag"
	"github.com/sxtool/sx/internal/sandbox"
)

var (
	flagOffline    bool
	flagOnline     bool
	flagLocalhost  bool
	flagAllowRead  []string
	flagAllowWrite []string
	flagDenyRead   []string
	flagTrace      bool
	flagTraceFile  string
	flagDryRun     bool
	flagVerbose    bool
	flagConfig     string
	flagNoConfig   bool
)

var rootCmd = &cobra.Command{
	Use:   "sx [flags] [profiles...] [-- command...]",
	Short: "Run commands in a macOS sandbox",
	Long: `sx runs a command (or an interactive shell) inside a macOS sandbox
built from composable profiles. Network access is denied by default;
filesystem access is limited to the working directory plus explicitly
allowed paths.

Examples:
  sx -- npm install          run a command offline with the base profile
  sx node -- npm test        add the node toolchain profile
  sx online                  interactive shell with network access
  sx --trace -- make         stream sandbox denials while make runs`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	// Errors are printed by main with the right exit code.
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	f := rootCmd.Flags()
	f.BoolVar(&flagOffline, "offline", false, "Block all network access")
	f.BoolVar(&flagOnline, "online", false, "Allow all network access")
	f.BoolVar(&flagLocalhost, "localhost", false, "Allow localhost network access only")
	f.StringArrayVar(&flagAllowRead, "allow-read", nil, "Additional readable path (repeatable)")
	f.StringArrayVar(&flagAllowWrite, "allow-write", nil, "Additional writable path (repeatable)")
	f.StringArrayVar(&flagDenyRead, "deny-read", nil, "Additional denied read path (repeatable)")
	f.BoolVarP(&flagTrace, "trace", "t", false, "Stream sandbox violations to stderr")
	f.StringVar(&flagTraceFile, "trace-file", "", "Write sandbox violations to a file")
	f.BoolVarP(&flagDryRun, "dry-run", "n", false, "Print the compiled policy without executing")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose diagnostics")
	f.StringVar(&flagConfig, "config", "", "Global config file (default ~/.config/sx/config.toml)")
	f.BoolVar(&flagNoConfig, "no-config", false, "Ignore global and project configuration")
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		diag.Errorf("%v", err)
		var parseErr *config.ParseError
		if errors.As(err, &parseErr) {
			return sandbox.ExitConfigError
		}
		return sandbox.ExitGeneralError
	}
	return exitStatus
}

// exitStatus carries the child's exit code out of RunE, which can only
// return an error.
var exitStatus int

func runRoot(cmd *cobra.Command, args []string) error {
	if err := validateNetworkFlags(); err != nil {
		return err
	}

	profiles, command := splitArgs(cmd, args)

	ctx, err := buildContext(profiles)
	if err != nil {
		return err
	}

	if flagDryRun {
		policy, err := sandbox.DryRun(ctx.Params)
		if err != nil {
			return err
		}
		fmt.Print(policy)
		return nil
	}

	code, err := sandbox.Execute(ctx.Params, sandbox.ExecOptions{
		Command:         command,
		Shell:           ctx.Shell,
		ShellEnv:        ctx.ShellEnv,
		Trace:           flagTrace,
		TraceFile:       flagTraceFile,
		LogFile:         ctx.LogFile,
		PromptIndicator: ctx.PromptIndicator,
	})
	if err != nil {
		return err
	}
	exitStatus = code
	return nil
}

func validateNetworkFlags() error {
	n := 0
	for _, set := range []bool{flagOffline, flagOnline, flagLocalhost} {
		if set {
			n++
		}
	}
	if n > 1 {
		return errors.New("--offline, --online, and --localhost are mutually exclusive")
	}
	return nil
}

// splitArgs separates profile names from the command after --.
func splitArgs(cmd *cobra.Command, args []string) (profiles, command []string) {
	if at := cmd.ArgsLenAtDash(); at >= 0 {
		return args[:at], args[at:]
	}
	return args, nil
}

func networkOverride() config.NetworkMode {
	switch {
	case flagOffline:
		return config.NetworkOffline
	case flagOnline:
		return config.NetworkOnline
	case flagLocalhost:
		return config.NetworkLocalhost
	default:
		return ""
	}
}

func workingDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return wd, nil
}
