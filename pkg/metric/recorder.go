package metric

import "github.com/prometheus/client_golang/prometheus"

// Recorder groups the counters of the sidebar protocol.
// The zero value is not usable; use NewRecorder or NopRecorder.
type Recorder struct {
	// Events counts outbound events by kind and channel.
	Events IncrementalCounter

	// Commands counts inbound commands by command and outcome.
	Commands IncrementalCounter

	// CallbackFailures counts subscriber callbacks that panicked, by event kind.
	CallbackFailures IncrementalCounter
}

// NewRecorder registers the protocol counters with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	return &Recorder{
		Events: NewCounterWithRegistry(reg,
			"sidebar_events_emitted_total",
			"Outbound menu events by kind and channel.",
			"kind", "channel"),
		Commands: NewCounterWithRegistry(reg,
			"sidebar_commands_total",
			"Inbound menu commands by command and outcome.",
			"command", "outcome"),
		CallbackFailures: NewCounterWithRegistry(reg,
			"sidebar_callback_failures_total",
			"Subscriber callbacks that failed during dispatch.",
			"kind"),
	}
}

// NopRecorder returns a recorder that discards everything.
func NopRecorder() *Recorder {
	return &Recorder{Events: Nop, Commands: Nop, CallbackFailures: Nop}
}

// OrNop returns r, or a NopRecorder when r is nil.
func (r *Recorder) OrNop() *Recorder {
	if r == nil {
		return NopRecorder()
	}
	return r
}
