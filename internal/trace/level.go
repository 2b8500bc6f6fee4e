package trace

import (
	"fmt"
	"strings"
)

// Level controls how much of a run is traced. Every level includes the
// coarser ones.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // только дамп кольца при падении
	LevelStage        // invocation, units and semantic stages
	LevelModule       // plus per-module work inside a stage
	LevelDebug        // plus definition-level points
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelStage:  "stage",
	LevelModule: "module",
	LevelDebug:  "debug",
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel reads a --trace-level value. "phase" and "detail" are kept as
// aliases of stage and module.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "phase":
		return LevelStage, nil
	case "detail":
		return LevelModule, nil
	}
	for l, n := range levelNames {
		if n == name {
			return Level(l), nil //nolint:gosec // index of a five-entry table
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (want %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope are recorded at this level.
// LevelError records nothing up front; the crash path dumps what it has.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelStage:
		return scope <= ScopeStage
	case LevelModule:
		return scope <= ScopeModule
	case LevelDebug:
		return true
	default:
		return false
	}
}
