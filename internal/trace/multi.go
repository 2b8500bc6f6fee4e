package trace

import "errors"

// MultiTracer fans out trace events to multiple tracers.
type MultiTracer struct {
	tracers []Tracer
	level   Level
	runID   string
}

// NewMultiTracer creates a MultiTracer emitting to all tracers. Every event
// is stamped with runID before it is fanned out.
func NewMultiTracer(level Level, runID string, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{
		tracers: tracers,
		level:   level,
		runID:   runID,
	}
}

// Emit sends the event to all underlying tracers. Each tracer gets its own
// copy since stream tracers stamp the sequence number in place.
func (t *MultiTracer) Emit(ev *Event) {
	if ev.RunID == "" {
		ev.RunID = t.runID
	}
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

func (t *MultiTracer) Flush() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Close() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
func (t *MultiTracer) RunID() string { return t.runID }
