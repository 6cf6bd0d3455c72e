package logging

import (
	"bytes"
	"strings"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota + 1
	INFO
	NOTICE
	WARN
	ERROR
	FATAL
)

const (
	levelDebug  = "DEBUG"
	levelInfo   = "INFO"
	levelNotice = "NOTICE"
	levelWarn   = "WARN"
	levelError  = "ERROR"
	levelFatal  = "FATAL"
)

//nolint:gochecknoglobals // lookup table for GetLevelFromString
var levelNames = map[string]Level{
	levelDebug:  DEBUG,
	levelInfo:   INFO,
	levelNotice: NOTICE,
	levelWarn:   WARN,
	levelError:  ERROR,
	levelFatal:  FATAL,
}

func (l Level) String() string {
	switch l {
	case DEBUG:
		return levelDebug
	case INFO:
		return levelInfo
	case NOTICE:
		return levelNotice
	case WARN:
		return levelWarn
	case ERROR:
		return levelError
	case FATAL:
		return levelFatal
	default:
		return ""
	}
}

// MarshalJSON writes the level as its upper case name.
func (l Level) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBufferString(`"`)
	buf.WriteString(l.String())
	buf.WriteString(`"`)

	return buf.Bytes(), nil
}

func (l Level) color() uint {
	switch l {
	case ERROR, FATAL:
		return redColor
	case WARN, NOTICE:
		return yellowColor
	case INFO:
		return normalColor
	case DEBUG:
		return grayColor
	default:
		return 0
	}
}

// GetLevelFromString returns the Level for a case-insensitive name. Unknown names map to INFO.
func GetLevelFromString(level string) Level {
	if l, ok := levelNames[strings.ToUpper(strings.TrimSpace(level))]; ok {
		return l
	}

	return INFO
}
