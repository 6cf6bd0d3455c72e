package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type loggerWithSkip interface {
	logfWithSkip(skip int, level Level, format string, args ...any)
}

// ContextLogger decorates a Logger with the trace id of the span active in ctx, so that
// statement logs of one session operation can be correlated with its span.
type ContextLogger struct {
	base    Logger
	traceID string
}

// NewContextLogger wraps base. When ctx carries no valid span the wrapper logs exactly like base.
func NewContextLogger(ctx context.Context, base Logger) *ContextLogger {
	l := &ContextLogger{base: base}

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		l.traceID = sc.TraceID().String()
	}

	return l
}

// TraceID returns the trace id picked up at construction, or an empty string.
func (l *ContextLogger) TraceID() string {
	return l.traceID
}

func (l *ContextLogger) args(args []any) []any {
	if l.traceID == "" {
		return args
	}

	return append(args, map[string]any{traceIDKey: l.traceID})
}

func (l *ContextLogger) write(level Level, format string, args ...any) {
	args = l.args(args)

	if ls, ok := l.base.(loggerWithSkip); ok {
		// skip=3: runtime.Caller(0) -> logfWithSkip(1) -> write(2) -> Debug/Info(3) -> user code
		ls.logfWithSkip(3, level, format, args...)

		if lg, isDefault := l.base.(*logger); isDefault && level == FATAL {
			lg.exit(1)
		}

		return
	}

	plain, formatted := l.fallback(level)
	if format == "" {
		plain(args...)
		return
	}

	formatted(format, args...)
}

func (l *ContextLogger) fallback(level Level) (plain func(...any), formatted func(string, ...any)) {
	switch level {
	case DEBUG:
		return l.base.Debug, l.base.Debugf
	case NOTICE:
		return l.base.Notice, l.base.Noticef
	case WARN:
		return l.base.Warn, l.base.Warnf
	case ERROR:
		return l.base.Error, l.base.Errorf
	case FATAL:
		return l.base.Fatal, l.base.Fatalf
	default:
		return l.base.Info, l.base.Infof
	}
}

func (l *ContextLogger) Debug(args ...any)             { l.write(DEBUG, "", args...) }
func (l *ContextLogger) Debugf(f string, args ...any)  { l.write(DEBUG, f, args...) }
func (l *ContextLogger) Log(args ...any)               { l.write(INFO, "", args...) }
func (l *ContextLogger) Logf(f string, args ...any)    { l.write(INFO, f, args...) }
func (l *ContextLogger) Info(args ...any)              { l.write(INFO, "", args...) }
func (l *ContextLogger) Infof(f string, args ...any)   { l.write(INFO, f, args...) }
func (l *ContextLogger) Notice(args ...any)            { l.write(NOTICE, "", args...) }
func (l *ContextLogger) Noticef(f string, args ...any) { l.write(NOTICE, f, args...) }
func (l *ContextLogger) Warn(args ...any)              { l.write(WARN, "", args...) }
func (l *ContextLogger) Warnf(f string, args ...any)   { l.write(WARN, f, args...) }
func (l *ContextLogger) Error(args ...any)             { l.write(ERROR, "", args...) }
func (l *ContextLogger) Errorf(f string, args ...any)  { l.write(ERROR, f, args...) }
func (l *ContextLogger) Fatal(args ...any)             { l.write(FATAL, "", args...) }
func (l *ContextLogger) Fatalf(f string, args ...any)  { l.write(FATAL, f, args...) }
func (l *ContextLogger) ChangeLevel(level Level)       { l.base.ChangeLevel(level) }
