package sandbox

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/sxtool/sx/internal/diag"
)

// logStreamPredicate scopes the system log stream to kernel sandbox
// denials.
const logStreamPredicate = `sender == "Sandbox" AND eventMessage CONTAINS "deny"`

// traceSink is where formatted violations go. A nil file means stderr
// with color; a file gets plain text. An optional persistent log records
// every violation in the compact log format regardless of destination.
// The sink is owned by the reader goroutine after Start.
type traceSink struct {
	file *os.File
	log  *os.File
	// Each destination warns on its first failed write only.
	warnedFile bool
	warnedLog  bool
}

func (s *traceSink) write(v *Violation) {
	if s.file == nil {
		fmt.Fprintln(os.Stderr, v.Format(true))
	} else if err := writeLine(s.file, v.Format(false)); err != nil && !s.warnedFile {
		diag.Warnf("failed to write trace file: %v", err)
		s.warnedFile = true
	}
	if s.log != nil {
		if _, err := fmt.Fprintln(s.log, v.LogLine()); err != nil && !s.warnedLog {
			diag.Warnf("failed to write violation log: %v", err)
			s.warnedLog = true
		}
	}
}

func writeLine(f *os.File, line string) error {
	if _, err := fmt.Fprintln(f, line); err != nil {
		return err
	}
	return f.Sync()
}

func (s *traceSink) close() {
	if s.file != nil {
		s.file.Close()
	}
	if s.log != nil {
		s.log.Close()
	}
}

// TraceSession owns one log-streaming child process and exactly one
// background reader goroutine. Single-use: Idle -> Running -> Stopped.
// The only state shared with the reader is the atomic running flag.
type TraceSession struct {
	cmd      *exec.Cmd
	running  atomic.Bool
	done     chan struct{}
	stopOnce sync.Once
}

// StartTrace streams formatted violations to stderr. A non-empty logPath
// additionally appends each violation to that file.
func StartTrace(logPath string) (*TraceSession, error) {
	sink, err := newSink(nil, logPath)
	if err != nil {
		return nil, err
	}
	session, err := startSession(logStreamCommand(), sink)
	if err != nil {
		sink.close()
		return nil, err
	}
	return session, nil
}

// StartTraceFile streams plain-text violations to the given file,
// truncating it. A non-empty logPath additionally appends each violation
// to that file.
func StartTraceFile(path, logPath string) (*TraceSession, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, err
	}
	sink, err := newSink(f, logPath)
	if err != nil {
		f.Close()
		return nil, err
	}
	session, err := startSession(logStreamCommand(), sink)
	if err != nil {
		sink.close()
		return nil, err
	}
	return session, nil
}

func newSink(file *os.File, logPath string) (*traceSink, error) {
	sink := &traceSink{file: file}
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return nil, err
		}
		log, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, err
		}
		sink.log = log
	}
	return sink, nil
}

func logStreamCommand() *exec.Cmd {
	return exec.Command("log", "stream",
		"--predicate", logStreamPredicate,
		"--style", "compact")
}

// startSession spawns cmd and the reader goroutine. Never blocks beyond
// the spawn itself.
func startSession(cmd *exec.Cmd, sink *traceSink) (*TraceSession, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	s := &TraceSession{
		cmd:  cmd,
		done: make(chan struct{}),
	}
	s.running.Store(true)

	go func() {
		defer close(s.done)
		defer sink.close()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if !s.running.Load() {
				break
			}
			if v := ParseStreamLine(scanner.Text()); v != nil {
				sink.write(v)
			}
		}
	}()

	return s, nil
}

// Stop flips the running flag, terminates the child, reaps it, and waits
// for the reader goroutine to exit. Idempotent; safe when the child has
// already died.
func (s *TraceSession) Stop() {
	s.stopOnce.Do(func() {
		s.running.Store(false)

		if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			diag.Warnf("failed to stop log stream: %v", err)
		}
		// Always reap: an unwaited child leaks a zombie. A non-zero exit
		// after Kill is expected.
		var exitErr *exec.ExitError
		if err := s.cmd.Wait(); err != nil && !errors.As(err, &exitErr) {
			diag.Warnf("failed to wait for log stream: %v", err)
		}
		<-s.done
	})
}
