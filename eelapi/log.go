package eelapi

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Severity is the closed seven-level message-log enumeration of
// spec.md §7 ("Visibility").
type Severity int

const (
	Info Severity = iota
	Warning
	CompileErrorSeverity
	VMWarning
	VMErrorSeverity
	InternalErrorSeverity
	Fatal
)

var severityNames = [...]string{
	Info:                  "info",
	Warning:               "warning",
	CompileErrorSeverity:  "compile-error",
	VMWarning:             "vm-warning",
	VMErrorSeverity:       "vm-error",
	InternalErrorSeverity: "internal-error",
	Fatal:                 "fatal",
}

var severityColor = [...]string{
	Info:                  "\x1b[36m", // cyan
	Warning:               "\x1b[33m", // yellow
	CompileErrorSeverity:  "\x1b[35m", // magenta
	VMWarning:             "\x1b[33m",
	VMErrorSeverity:       "\x1b[31m", // red
	InternalErrorSeverity: "\x1b[1;31m",
	Fatal:                 "\x1b[1;41m",
}

const colorReset = "\x1b[0m"

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "unknown"
}

// Log is the per-VM message log (spec.md §7). Entries are decorated
// with source location when the caller supplies one, and rendered with
// ANSI severity color only when the destination writer is a real
// terminal — the same isatty.IsTerminal gate the teacher's CLI/REPL use
// before colorizing interactive output.
type Log struct {
	out       io.Writer
	colorize  bool
	threshold Severity
}

// NewLog builds a Log writing to w (os.Stderr if nil), auto-detecting
// whether w is a terminal when w is an *os.File.
func NewLog(w io.Writer) *Log {
	if w == nil {
		w = os.Stderr
	}
	colorize := false
	if f, ok := w.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Log{out: w, colorize: colorize}
}

// SetThreshold suppresses entries below sev.
func (l *Log) SetThreshold(sev Severity) { l.threshold = sev }

// Entry is one decorated message-log record.
type Entry struct {
	Severity Severity
	File     string
	Line     int
	Message  string
}

func (e Entry) String() string {
	if e.File == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s:%d: %s", e.Severity, e.File, e.Line, e.Message)
}

// Logf decorates and emits a message at sev, with location, matching the
// §7 "decorates entries with source location when available" contract.
func (l *Log) Logf(sev Severity, file string, line int, format string, a ...any) {
	if sev < l.threshold {
		return
	}
	e := Entry{Severity: sev, File: file, Line: line, Message: fmt.Sprintf(format, a...)}
	if l.colorize {
		fmt.Fprintf(l.out, "%s%s%s\n", severityColor[sev], e.String(), colorReset)
		return
	}
	fmt.Fprintln(l.out, e.String())
}

// Info/Warning/VMError/Fatal are convenience wrappers over Logf for the
// no-location case (most VM-internal diagnostics have none).
func (l *Log) Info(format string, a ...any)    { l.Logf(Info, "", 0, format, a...) }
func (l *Log) Warning(format string, a ...any) { l.Logf(Warning, "", 0, format, a...) }
func (l *Log) VMError(format string, a ...any) { l.Logf(VMErrorSeverity, "", 0, format, a...) }
func (l *Log) Fatal(format string, a ...any)   { l.Logf(Fatal, "", 0, format, a...) }
