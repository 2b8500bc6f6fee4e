package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the last N events in memory. The driver dumps it when
// analysis panics or fails to finish.
type RingTracer struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	head     int  // next write position
	full     bool // has wrapped around
	level    Level
	runID    string
}

// NewRingTracer creates a new RingTracer with specified capacity.
func NewRingTracer(capacity int, level Level, runID string) *RingTracer {
	if capacity <= 0 {
		capacity = defaultRingSize
	}

	return &RingTracer{
		events:   make([]Event, capacity),
		capacity: capacity,
		level:    level,
		runID:    runID,
	}
}

// Emit adds an event to the ring buffer.
func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	stored := *ev
	if stored.Seq == 0 {
		stored.Seq = NextSeq()
	}
	if stored.RunID == "" {
		stored.RunID = t.runID
	}
	t.events[t.head] = stored
	t.head = (t.head + 1) % t.capacity

	if t.head == 0 {
		t.full = true
	}
}

// Snapshot returns a copy of all stored events in chronological order.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.full {
		result := make([]Event, t.head)
		copy(result, t.events[:t.head])
		return result
	}

	// [head:capacity] + [0:head]
	result := make([]Event, t.capacity)
	copy(result, t.events[t.head:])
	copy(result[t.capacity-t.head:], t.events[:t.head])
	return result
}

// Dump writes all events to w in the given format.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	if format == FormatChrome {
		if _, err := io.WriteString(w, chromeHeader); err != nil {
			return err
		}
	}
	var start Event
	if len(events) > 0 {
		start = events[0]
	}
	for i := range events {
		if format == FormatChrome && i > 0 {
			if _, err := io.WriteString(w, chromeSep); err != nil {
				return err
			}
		}
		if _, err := w.Write(FormatEvent(&events[i], format, start.Time)); err != nil {
			return err
		}
	}
	if format == FormatChrome {
		_, err := io.WriteString(w, chromeFooter)
		return err
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
func (t *RingTracer) RunID() string { return t.runID }
