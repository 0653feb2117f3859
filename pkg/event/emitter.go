package event

import (
	"log/slog"

	"github.com/mchmarny/sidebar/pkg/metric"
)

// Emitter broadcasts events on an ordered list of sinks.
// Every sink runs synchronously, in order, before Emit returns.
type Emitter struct {
	sinks    []Sink
	recorder *metric.Recorder
}

// NewEmitter creates an emitter over sinks. A nil recorder disables metrics.
func NewEmitter(rec *metric.Recorder, sinks ...Sink) *Emitter {
	return &Emitter{
		sinks:    sinks,
		recorder: rec.OrNop(),
	}
}

// Emit sends the event to every sink. Delivery is fire-and-forget; only
// sinks that dispatched the event are counted.
func (e *Emitter) Emit(kind Kind, d Detail) {
	slog.Debug("emitting menu event", "kind", kind, "sinks", len(e.sinks))

	for _, s := range e.sinks {
		if s.Emit(kind, d) {
			e.recorder.Events.Increment(string(kind), s.Channel())
		}
	}
}

// Sinks returns the sinks in emission order.
func (e *Emitter) Sinks() []Sink {
	out := make([]Sink, len(e.sinks))
	copy(out, e.sinks)
	return out
}
