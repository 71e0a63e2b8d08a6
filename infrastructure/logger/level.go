package logger

import (
	"strings"

	"github.com/pkg/errors"
)

// Level is the severity threshold of a logger or writer. Entries below it
// are dropped.
type Level uint32

// Level constants.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

type levelNames struct {
	tag  string
	name string
}

var levels = [...]levelNames{
	LevelTrace:    {"TRC", "trace"},
	LevelDebug:    {"DBG", "debug"},
	LevelInfo:     {"INF", "info"},
	LevelWarn:     {"WRN", "warn"},
	LevelError:    {"ERR", "error"},
	LevelCritical: {"CRT", "critical"},
	LevelOff:      {"OFF", "off"},
}

// LevelFromString returns the level named by s, either by its full name or
// by its three letter tag, case insensitively. Unknown names return
// LevelInfo and false.
func LevelFromString(s string) (l Level, ok bool) {
	s = strings.ToLower(s)
	for level, names := range levels {
		if s == names.name || s == strings.ToLower(names.tag) {
			return Level(level), true
		}
	}
	return LevelInfo, false
}

// ParseLevel is LevelFromString with an error for unknown names.
func ParseLevel(s string) (Level, error) {
	level, ok := LevelFromString(s)
	if !ok {
		return LevelInfo, errors.Errorf("'%s' Isn't a valid log level", s)
	}
	return level, nil
}

// String returns the three letter tag of the level as it appears in log
// lines. Levels at or above LevelOff are "OFF".
func (l Level) String() string {
	if l >= LevelOff {
		return levels[LevelOff].tag
	}
	return levels[l].tag
}
