package pipeline

import "time"

// Stage describes a phase of one unit.
type Stage string

const (
	StageRead    Stage = "read"
	StageOrder   Stage = "order"
	StageAnalyze Stage = "analyze"
	StageExport  Stage = "export"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
	// StatusSkipped marks a unit that was not analysed, e.g. one caught in
	// an import cycle.
	StatusSkipped Status = "skipped"
)

// Event reports progress for a unit (or for the whole run when Unit is empty).
type Event struct {
	Unit    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Events of different units may
// arrive from different goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) { f(evt) }

type nopSink struct{}

func (nopSink) OnEvent(Event) {}
