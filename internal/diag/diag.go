// Package diag writes tagged diagnostics to stderr. Warnings and errors
// here are advisory output for the user; hard failures travel as errors.
package diag

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Output is where diagnostics go. Tests may swap it.
var Output io.Writer = os.Stderr

var (
	colorMu     sync.Mutex
	colorForced *bool
)

// Styles shared by diagnostics and the violation trace.
var (
	Red     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	Green   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	Yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	Blue    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	Magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	Cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	Dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	Bold    = lipgloss.NewStyle().Bold(true)
)

// SetColor forces colorized output on or off, overriding TTY detection.
func SetColor(enabled bool) {
	colorMu.Lock()
	defer colorMu.Unlock()
	colorForced = &enabled
}

// ColorEnabled reports whether styled output is active: forced value if
// set, otherwise stderr-is-a-TTY with NO_COLOR honored.
func ColorEnabled() bool {
	colorMu.Lock()
	defer colorMu.Unlock()
	if colorForced != nil {
		return *colorForced
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// Paint renders s with the given style when color is enabled, otherwise
// returns s unchanged.
func Paint(style lipgloss.Style, s string) string {
	if !ColorEnabled() {
		return s
	}
	return style.Render(s)
}

// Warnf reports a recoverable problem, tagged [sx:warn].
func Warnf(format string, args ...any) {
	fmt.Fprintf(Output, "%s %s\n", Paint(Yellow, "[sx:warn]"), fmt.Sprintf(format, args...))
}

// Errorf reports a serious but non-fatal problem, tagged [sx:error].
func Errorf(format string, args ...any) {
	fmt.Fprintf(Output, "%s %s\n", Paint(Red, "[sx:error]"), fmt.Sprintf(format, args...))
}

// Tracef reports violation-trace lifecycle messages, tagged [sx:trace].
func Tracef(format string, args ...any) {
	fmt.Fprintf(Output, "%s %s\n", Paint(Dim, "[sx:trace]"), fmt.Sprintf(format, args...))
}
