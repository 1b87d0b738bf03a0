package sandbox

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sxtool/sx/internal/diag"
)

// ViolationKind is the closed taxonomy of denied operations.
type ViolationKind int

const (
	KindOther ViolationKind = iota
	KindNetwork
	KindRead
	KindWrite
	KindProcess
	KindMach
)

// KindOf classifies a denied operation string by substring.
func KindOf(operation string) ViolationKind {
	switch {
	case strings.Contains(operation, "network"):
		return KindNetwork
	case strings.Contains(operation, "file-read"):
		return KindRead
	case strings.Contains(operation, "file-write"):
		return KindWrite
	case strings.Contains(operation, "process"):
		return KindProcess
	case strings.Contains(operation, "mach"):
		return KindMach
	default:
		return KindOther
	}
}

// Label returns the bracketed tag for this kind.
func (k ViolationKind) Label() string {
	switch k {
	case KindNetwork:
		return "[NETWORK]"
	case KindRead:
		return "[READ]"
	case KindWrite:
		return "[WRITE]"
	case KindProcess:
		return "[PROCESS]"
	case KindMach:
		return "[MACH]"
	default:
		return "[OTHER]"
	}
}

func (k ViolationKind) style() lipgloss.Style {
	switch k {
	case KindNetwork:
		return diag.Red
	case KindRead:
		return diag.Yellow
	case KindWrite:
		return diag.Magenta
	case KindProcess:
		return diag.Cyan
	case KindMach:
		return diag.Blue
	default:
		return diag.Dim
	}
}

// Violation is one parsed denial event.
type Violation struct {
	Timestamp string
	PID       int    // 0 when unknown
	Operation string
	Target    string // empty when the denial has no path target
	Process   string // acting process name, empty when unknown
}

// ParseStreamLine parses one line of the live denial stream. Header and
// non-denial lines yield nil. Expected shape:
//
//	<timestamp> kernel: (Sandbox) Sandbox: curl(1234) deny(1) network-outbound <target>
func ParseStreamLine(line string) *Violation {
	if strings.HasPrefix(line, "Filtering") || strings.HasPrefix(line, "Timestamp") || strings.TrimSpace(line) == "" {
		return nil
	}
	if !strings.Contains(line, "deny") {
		return nil
	}
	idx := strings.Index(line, "Sandbox: ")
	if idx < 0 {
		return nil
	}
	rest := line[idx+len("Sandbox: "):]

	procPart, denyRest, found := strings.Cut(rest, " deny")
	if !found {
		return nil
	}
	process, pid := splitProcessPID(strings.TrimSpace(procPart))

	// Skip the "(N) " refusal count if present.
	denyRest = strings.TrimSpace(denyRest)
	if end := strings.Index(denyRest, ") "); end >= 0 {
		denyRest = denyRest[end+2:]
	}
	operation, target, _ := strings.Cut(denyRest, " ")
	if operation == "" {
		return nil
	}
	return &Violation{
		Timestamp: leadingTimestamp(line),
		PID:       pid,
		Operation: operation,
		Target:    target,
		Process:   process,
	}
}

// leadingTimestamp returns the "date time" prefix of a compact-style log
// line, or "" when the line does not start with one.
func leadingTimestamp(line string) string {
	date, rest, ok := strings.Cut(line, " ")
	if !ok || !strings.Contains(date, "-") {
		return ""
	}
	clock, _, ok := strings.Cut(rest, " ")
	if !ok || !strings.Contains(clock, ":") {
		return ""
	}
	return date + " " + clock
}

// ParseLogLine parses one line of a persisted violation log (sandboxd
// style). Returns nil for lines that carry no denial data.
func ParseLogLine(line string) *Violation {
	if !strings.Contains(line, "deny") {
		return nil
	}
	idx := strings.Index(line, "deny")
	fields := strings.Fields(line[idx:])
	v := &Violation{Timestamp: leadingTimestamp(line)}
	if len(fields) >= 2 {
		v.Operation = fields[1]
	}
	if len(fields) >= 3 {
		v.Target = strings.Join(fields[2:], " ")
	}
	if open := strings.IndexByte(line, '('); open >= 0 {
		if close := strings.IndexByte(line[open:], ')'); close > 0 {
			if pid, err := strconv.Atoi(line[open+1 : open+close]); err == nil {
				v.PID = pid
			}
		}
	}
	if v.Operation == "" && v.Target == "" {
		return nil
	}
	return v
}

// Kind classifies the violation's operation.
func (v *Violation) Kind() ViolationKind { return KindOf(v.Operation) }

// Format renders the violation for the trace stream. Colored output is
// for terminals; plain output is for files.
func (v *Violation) Format(colored bool) string {
	proc := v.Process
	if proc == "" {
		proc = "unknown"
	}
	if v.PID > 0 {
		proc = fmt.Sprintf("%s(%d)", proc, v.PID)
	}
	if !colored {
		return fmt.Sprintf("[sx:trace] %s %s %s (%s)", v.Kind().Label(), v.Operation, v.Target, proc)
	}
	return fmt.Sprintf("%s %s %s %s %s",
		diag.Paint(diag.Dim, "[sx:trace]"),
		diag.Paint(v.Kind().style(), v.Kind().Label()),
		diag.Paint(diag.Bold, v.Operation),
		v.Target,
		diag.Paint(diag.Dim, "("+proc+")"))
}

// LogLine renders the violation for the persisted log.
func (v *Violation) LogLine() string {
	var b strings.Builder
	if v.Timestamp != "" {
		b.WriteString(v.Timestamp)
		b.WriteByte(' ')
	}
	b.WriteString("deny ")
	b.WriteString(v.Operation)
	if v.Target != "" {
		b.WriteByte(' ')
		b.WriteString(v.Target)
	}
	return b.String()
}

func splitProcessPID(s string) (string, int) {
	open := strings.LastIndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return s, 0
	}
	pid, err := strconv.Atoi(s[open+1 : len(s)-1])
	if err != nil {
		return s, 0
	}
	return s[:open], pid
}

// AppendViolation appends one violation to the log file, creating it and
// its directory as needed.
func AppendViolation(logPath string, v *Violation) error {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintln(f, v.LogLine())
	return err
}

// ReadViolations parses a persisted violation log.
func ReadViolations(logPath string) ([]*Violation, error) {
	f, err := os.Open(logPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var violations []*Violation
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if v := ParseLogLine(scanner.Text()); v != nil {
			violations = append(violations, v)
		}
	}
	return violations, scanner.Err()
}

// DefaultLogPath returns the default violation log location under the
// user's data directory.
func DefaultLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "Application Support", "sx", "violations.log"), nil
}
