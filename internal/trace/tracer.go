package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultRingSize = 4096

// Tracer receives events. Implementations are safe for concurrent use:
// units of one batch emit from different goroutines.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	// Enabled is Level() > LevelOff.
	Enabled() bool
	// RunID identifies the invocation the events belong to.
	RunID() string
}

// StorageMode says where events go: straight to the output, into the
// in-memory ring, or both.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1
	ModeRing
	ModeBoth
)

var modeNames = [...]string{"unknown", "stream", "ring", "both"}

func (m StorageMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return modeNames[0]
}

// ParseMode reads a --trace-mode value.
func ParseMode(s string) (StorageMode, error) {
	name := strings.ToLower(s)
	for i := 1; i < len(modeNames); i++ {
		if modeNames[i] == name {
			return StorageMode(i), nil //nolint:gosec // index of a four-entry table
		}
	}
	return ModeRing, fmt.Errorf("invalid trace mode %q (want stream|ring|both)", s)
}

// Config is what cmd/ternc collects from the --trace flags.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format    // FormatAuto picks by the extension of OutputPath
	Output     io.Writer // wins over OutputPath
	OutputPath string    // "-" or empty is stderr
	RingSize   int
	Heartbeat  time.Duration // 0 disables heartbeats
	RunID      string        // generated when empty
}

// NewRunID returns a fresh invocation id.
func NewRunID() string { return uuid.NewString() }

// New builds the tracer described by cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = defaultRingSize
	}
	if cfg.RunID == "" {
		cfg.RunID = NewRunID()
	}

	var ring *RingTracer
	if cfg.Mode == ModeRing || cfg.Mode == ModeBoth {
		ring = NewRingTracer(cfg.RingSize, cfg.Level, cfg.RunID)
		if cfg.Mode == ModeRing {
			return ring, nil
		}
	}
	if cfg.Mode != ModeStream && cfg.Mode != ModeBoth {
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}

	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	stream := NewStreamTracer(w, cfg.Level, formatFor(cfg), cfg.RunID)
	if ring == nil {
		return stream, nil
	}
	return NewMultiTracer(cfg.Level, cfg.RunID, stream, ring), nil
}

func formatFor(cfg Config) Format {
	if cfg.Format != FormatAuto {
		return cfg.Format
	}
	switch filepath.Ext(cfg.OutputPath) {
	case ".ndjson":
		return FormatNDJSON
	case ".json":
		return FormatChrome
	}
	return FormatText
}

// openOutput opens the stream destination. Stderr is wrapped so Close
// leaves it open.
func openOutput(cfg Config) (io.Writer, error) {
	switch {
	case cfg.Output != nil:
		return cfg.Output, nil
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		return noClose{os.Stderr}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("open trace output: %w", err)
	}
	return f, nil
}

type noClose struct{ io.Writer }
