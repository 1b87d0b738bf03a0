package sandbox

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sxtool/sx/internal/config"
	"github.com/sxtool/sx/internal/diag"
	"github.com/sxtool/sx/internal/shell"
	"mvdan.cc/sh/v3/syntax"
)

// sandboxExecPath is the OS enforcement entry point.
const sandboxExecPath = "/usr/bin/sandbox-exec"

// Exit code conventions.
const (
	ExitSuccess              = 0
	ExitGeneralError         = 1
	ExitConfigError          = 2
	ExitCommandNotExecutable = 126
	ExitCommandNotFound      = 127
	ExitInterrupted          = 130
	ExitSandboxViolation     = 137
)

// graceDelay gives the log stream time to surface trailing denials
// before the trace session is torn down, and to warm up before the
// command starts.
const graceDelay = 100 * time.Millisecond

// ExecOptions controls one supervised execution.
type ExecOptions struct {
	// Command to run. Empty means an interactive shell.
	Command []string
	// Interactive shell override; falls back to $SHELL, then /bin/zsh.
	Shell string
	// Environment filtering applied to the child. Nil passes everything.
	ShellEnv *config.ShellConfig
	// Stream violations while the command runs.
	Trace bool
	// Write violations to this file instead of stderr.
	TraceFile string
	// Append every violation to this persistent log. Empty disables.
	LogFile string
	// Prefix the interactive prompt with the sandbox mode indicator.
	PromptIndicator bool
}

// Execute compiles params, runs the command under the OS sandbox with
// inherited stdio, and returns the child's exit code unchanged. The
// SANDBOX_MODE environment marker is set for prompt/tooling integration.
func Execute(params *Params, opts ExecOptions) (int, error) {
	session := startTraceIfRequested(&opts)
	if session != nil {
		defer session.Stop()
	}

	policy, err := Compile(params)
	if err != nil {
		return ExitGeneralError, err
	}

	profileFile, err := writeProfileFile(policy)
	if err != nil {
		return ExitGeneralError, fmt.Errorf("write profile: %w", err)
	}
	defer os.Remove(profileFile)

	interactive := len(opts.Command) == 0
	shellPath := resolveShell(opts.Shell)

	args := []string{"-f", profileFile}
	if interactive {
		args = append(args, shellPath)
	} else {
		args = append(args, opts.Command...)
	}

	cmd := exec.Command(sandboxExecPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	env := os.Environ()
	if opts.ShellEnv != nil {
		env = shell.FilterEnv(env, opts.ShellEnv)
	}
	env = append(env, "SANDBOX_MODE="+modeLabel(params.NetworkMode))

	if interactive {
		var cleanup func()
		env, cleanup = prepareInteractive(env, shellPath, params.NetworkMode, opts.PromptIndicator)
		if cleanup != nil {
			defer cleanup()
		}
	}
	cmd.Env = env

	runErr := cmd.Run()

	if session != nil {
		time.Sleep(graceDelay)
		session.Stop()
	}

	return exitCode(runErr)
}

func startTraceIfRequested(opts *ExecOptions) *TraceSession {
	if !opts.Trace && opts.TraceFile == "" {
		return nil
	}
	var (
		session *TraceSession
		err     error
	)
	if opts.TraceFile != "" {
		diag.Tracef("writing sandbox violations to %s", opts.TraceFile)
		session, err = StartTraceFile(opts.TraceFile, opts.LogFile)
	} else {
		diag.Tracef("starting sandbox violation trace")
		session, err = StartTrace(opts.LogFile)
	}
	if err != nil {
		// Tracing is diagnostic, not security-critical: degrade to a
		// no-op with a single warning.
		diag.Warnf("failed to start violation trace: %v", err)
		return nil
	}
	time.Sleep(graceDelay)
	return session
}

// DryRun compiles params without executing anything.
func DryRun(params *Params) (string, error) {
	return Compile(params)
}

func writeProfileFile(policy string) (string, error) {
	f, err := os.CreateTemp("", "sx-*.sb")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(policy); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func resolveShell(override string) string {
	if override != "" {
		return override
	}
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	return "/bin/zsh"
}

func modeLabel(mode config.NetworkMode) string {
	if !mode.IsSet() {
		return string(config.NetworkOffline)
	}
	return string(mode)
}

// prepareInteractive disables shell history inside interactive sessions so
// secrets typed in the sandbox never land in history files. Bash and fish
// respect environment variables; zsh needs a ZDOTDIR wrapper that sources
// the user's zshrc first and then turns history off, so the user's own
// config cannot re-enable it. The wrapper also prefixes the prompt with
// the mode indicator when enabled. Returns the cleanup for the wrapper dir.
func prepareInteractive(env []string, shellPath string, mode config.NetworkMode, indicator bool) ([]string, func()) {
	env = append(env,
		"fish_history=",
		"HISTFILE=/dev/null",
		"HISTSIZE=0",
		"HISTFILESIZE=0",
	)
	if shell.TypeFromPath(shellPath) != shell.Zsh {
		return env, nil
	}

	dir, err := os.MkdirTemp("", "sx-zdotdir-*")
	if err != nil {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/"
	}
	zshrc, err := syntax.Quote(filepath.Join(home, ".zshrc"), syntax.LangBash)
	if err != nil {
		os.RemoveAll(dir)
		return env, nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# sx sandbox wrapper - sources user config then disables history\n")
	fmt.Fprintf(&b, "[[ -f %s ]] && source %s\n", zshrc, zshrc)
	b.WriteString("HISTFILE=/dev/null\nHISTSIZE=0\nSAVEHIST=0\n")
	if indicator {
		prompt, qerr := syntax.Quote(
			shell.PromptIndicator(config.NetworkMode(modeLabel(mode)), shell.StylePlain),
			syntax.LangBash)
		if qerr == nil {
			fmt.Fprintf(&b, "PROMPT=%s\"$PROMPT\"\n", prompt)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, ".zshrc"), []byte(b.String()), 0o600); err != nil {
		os.RemoveAll(dir)
		return env, nil
	}
	env = append(env, "ZDOTDIR="+dir)
	return env, func() { os.RemoveAll(dir) }
}

// exitCode maps a Run error onto the exit-code conventions. Signal deaths
// map to 128+signal, so SIGINT yields 130 and SIGKILL 137.
func exitCode(err error) (int, error) {
	if err == nil {
		return ExitSuccess, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}
		return exitErr.ExitCode(), nil
	}
	if os.IsNotExist(err) {
		return ExitCommandNotFound, err
	}
	if os.IsPermission(err) {
		return ExitCommandNotExecutable, err
	}
	return ExitGeneralError, err
}
