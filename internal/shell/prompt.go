// Package shell provides the environment filtering, prompt indicator, and
// shell integration scripts for sandboxed sessions.
package shell

import (
	"fmt"
	"path/filepath"

	"github.com/sxtool/sx/internal/config"
)

// PromptStyle selects the indicator rendering.
type PromptStyle int

const (
	StyleColored PromptStyle = iota
	StylePlain
)

// ansi color codes used in generated prompt text. These are embedded in
// shell prompts rather than written to our own terminal, so they stay raw
// escape sequences instead of going through the diag styles.
const (
	ansiRed    = "\x1b[0;31m"
	ansiYellow = "\x1b[0;33m"
	ansiGreen  = "\x1b[0;32m"
	ansiReset  = "\x1b[0m"
)

// PromptIndicator formats the sandbox indicator shown in shell prompts.
func PromptIndicator(mode config.NetworkMode, style PromptStyle) string {
	if style == StylePlain {
		return fmt.Sprintf("[sx:%s] ", mode)
	}
	var color string
	switch mode {
	case config.NetworkOnline:
		color = ansiGreen
	case config.NetworkLocalhost:
		color = ansiYellow
	default:
		color = ansiRed
	}
	return fmt.Sprintf("%s[sx:%s]%s ", color, mode, ansiReset)
}

// Type identifies the user's shell for integration and history handling.
type Type int

const (
	Unknown Type = iota
	Zsh
	Bash
	Fish
)

// TypeFromPath detects the shell type from its executable path.
func TypeFromPath(path string) Type {
	switch filepath.Base(path) {
	case "zsh":
		return Zsh
	case "bash":
		return Bash
	case "fish":
		return Fish
	default:
		return Unknown
	}
}
