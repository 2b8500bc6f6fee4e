package trace

import (
	"strconv"
	"sync"
	"time"
)

// Heartbeat emits a driver-level event every interval. A run of
// heartbeats with no span ends in between points at a stuck stage.
type Heartbeat struct {
	tracer Tracer
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// StartHeartbeat returns nil when tracing is off or interval is not
// positive; (*Heartbeat)(nil).Stop is a no-op.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{tracer: t, done: make(chan struct{})}
	h.wg.Add(1)
	go h.loop(interval)
	return h
}

func (h *Heartbeat) loop(interval time.Duration) {
	defer h.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for beat := 1; ; beat++ {
		select {
		case <-h.done:
			return
		case now := <-ticker.C:
			h.tracer.Emit(&Event{
				Time:   now,
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				Name:   "heartbeat",
				Detail: "#" + strconv.Itoa(beat),
			})
		}
	}
}

// Stop ends the heartbeat and waits for its goroutine. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.done) })
	h.wg.Wait()
}
