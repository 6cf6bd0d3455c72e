// Package logging provides the leveled logger used by sqlsession. Entries are written as JSON lines,
// or as colored single lines when stdout is attached to a terminal.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/term"
)

const (
	redColor    = 202
	yellowColor = 220
	normalColor = 6
	grayColor   = 8

	traceIDKey = "__trace_id__"
)

// PrettyPrint is implemented by messages that know how to render themselves on a terminal.
type PrettyPrint interface {
	PrettyPrint(writer io.Writer)
}

// Logger is the leveled logging contract used throughout sqlsession.
type Logger interface {
	Debug(args ...any)
	Debugf(format string, args ...any)
	Log(args ...any)
	Logf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Notice(args ...any)
	Noticef(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	ChangeLevel(level Level)
}

type logEntry struct {
	Level   Level     `json:"level"`
	Time    time.Time `json:"time"`
	Message any       `json:"message"`
	Caller  string    `json:"caller,omitempty"`
	TraceID string    `json:"trace_id,omitempty"`
}

type logger struct {
	level      Level
	normalOut  io.Writer
	errorOut   io.Writer
	isTerminal bool
	lock       chan struct{}
	exit       func(code int)
}

// NewLogger returns a Logger writing INFO and below to stdout and ERROR and above to stderr.
func NewLogger(level Level) Logger {
	return &logger{
		level:      level,
		normalOut:  os.Stdout,
		errorOut:   os.Stderr,
		isTerminal: checkIfTerminal(os.Stdout),
		lock:       make(chan struct{}, 1),
		exit:       os.Exit,
	}
}

func checkIfTerminal(w io.Writer) bool {
	switch v := w.(type) {
	case *os.File:
		return term.IsTerminal(int(v.Fd()))
	default:
		return false
	}
}

func (l *logger) logf(level Level, format string, args ...any) {
	// skip=3: runtime.Caller(0) -> logfWithSkip(1) -> logf(2) -> Debug/Info(3) -> user code
	l.logfWithSkip(3, level, format, args...)
}

func (l *logger) logfWithSkip(skip int, level Level, format string, args ...any) {
	if level < l.level {
		return
	}

	out := l.normalOut
	if level >= ERROR {
		out = l.errorOut
	}

	entry := logEntry{
		Level: level,
		Time:  time.Now(),
	}

	if _, file, line, ok := runtime.Caller(skip); ok {
		entry.Caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	args, entry.TraceID = extractTraceID(args)

	switch {
	case len(args) == 1 && format == "":
		entry.Message = args[0]
	case len(args) != 0 && format == "":
		entry.Message = fmt.Sprint(args...)
	case format != "":
		entry.Message = fmt.Sprintf(format, args...)
	}

	l.lock <- struct{}{}
	defer func() { <-l.lock }()

	if l.isTerminal {
		l.prettyPrint(entry, out)
	} else {
		_ = json.NewEncoder(out).Encode(entry)
	}
}

func extractTraceID(args []any) ([]any, string) {
	if len(args) == 0 {
		return args, ""
	}

	m, ok := args[len(args)-1].(map[string]any)
	if !ok {
		return args, ""
	}

	id, ok := m[traceIDKey].(string)
	if !ok {
		return args, ""
	}

	return args[:len(args)-1], id
}

func (l *logger) prettyPrint(e logEntry, out io.Writer) {
	fmt.Fprintf(out, "\u001B[38;5;%dm%s\u001B[0m [%s] ", e.Level.color(), e.Level.String()[0:4], e.Time.Format(time.TimeOnly))

	if e.TraceID != "" {
		fmt.Fprintf(out, "\u001B[38;5;8m%s\u001B[0m ", e.TraceID)
	}

	if fn, ok := e.Message.(PrettyPrint); ok {
		fn.PrettyPrint(out)
		return
	}

	fmt.Fprintf(out, "%v\n", e.Message)
}

func (l *logger) Debug(args ...any) {
	l.logf(DEBUG, "", args...)
}

func (l *logger) Debugf(format string, args ...any) {
	l.logf(DEBUG, format, args...)
}

func (l *logger) Log(args ...any) {
	l.logf(INFO, "", args...)
}

func (l *logger) Logf(format string, args ...any) {
	l.logf(INFO, format, args...)
}

func (l *logger) Info(args ...any) {
	l.logf(INFO, "", args...)
}

func (l *logger) Infof(format string, args ...any) {
	l.logf(INFO, format, args...)
}

func (l *logger) Notice(args ...any) {
	l.logf(NOTICE, "", args...)
}

func (l *logger) Noticef(format string, args ...any) {
	l.logf(NOTICE, format, args...)
}

func (l *logger) Warn(args ...any) {
	l.logf(WARN, "", args...)
}

func (l *logger) Warnf(format string, args ...any) {
	l.logf(WARN, format, args...)
}

func (l *logger) Error(args ...any) {
	l.logf(ERROR, "", args...)
}

func (l *logger) Errorf(format string, args ...any) {
	l.logf(ERROR, format, args...)
}

func (l *logger) Fatal(args ...any) {
	l.logf(FATAL, "", args...)
	l.exit(1)
}

func (l *logger) Fatalf(format string, args ...any) {
	l.logf(FATAL, format, args...)
	l.exit(1)
}

func (l *logger) ChangeLevel(level Level) {
	l.level = level
}
