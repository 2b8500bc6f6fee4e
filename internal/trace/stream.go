package trace

import (
	"io"
	"sync"
	"time"
)

// StreamTracer writes events immediately to an io.Writer.
type StreamTracer struct {
	mu         sync.Mutex
	w          io.Writer
	level      Level
	format     Format
	runID      string
	started    time.Time
	firstEvent bool // for Chrome format comma handling
}

// NewStreamTracer creates a new StreamTracer.
func NewStreamTracer(w io.Writer, level Level, format Format, runID string) *StreamTracer {
	st := &StreamTracer{
		w:          w,
		level:      level,
		format:     format,
		runID:      runID,
		started:    time.Now(),
		firstEvent: true,
	}

	if format == FormatChrome {
		// трассировка не должна ронять анализ
		_, _ = io.WriteString(w, chromeHeader) //nolint:errcheck
	}

	return st
}

// Emit writes an event to the output. Write errors are dropped.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}

	if ev.Seq == 0 {
		ev.Seq = NextSeq()
	}
	if ev.RunID == "" {
		ev.RunID = t.runID
	}
	data := FormatEvent(ev, t.format, t.started)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.format == FormatChrome {
		if !t.firstEvent {
			_, _ = io.WriteString(t.w, chromeSep) //nolint:errcheck
		}
		t.firstEvent = false
	}
	_, _ = t.w.Write(data) //nolint:errcheck
}

// Flush calls the writer's Flush method when it has one.
func (t *StreamTracer) Flush() error {
	if flusher, ok := t.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close writes the Chrome footer, flushes and closes the writer if it is an
// io.Closer.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	if t.format == FormatChrome {
		_, _ = io.WriteString(t.w, chromeFooter) //nolint:errcheck
	}
	t.mu.Unlock()

	if err := t.Flush(); err != nil {
		return err
	}
	if closer, ok := t.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
func (t *StreamTracer) RunID() string { return t.runID }
