package command

import (
	"log/slog"

	"github.com/mchmarny/sidebar/pkg/event"
	"github.com/mchmarny/sidebar/pkg/frame"
	"github.com/mchmarny/sidebar/pkg/metric"
)

// SenderCheck decides whether a message may be treated as a command.
// It is a cooperative-peer filter, not authentication.
type SenderCheck func(frame.Message) bool

// FromParent accepts only messages whose source is the immediate parent of win.
// A top-level window has no parent to accept from.
func FromParent(win *frame.Window) SenderCheck {
	return func(m frame.Message) bool {
		return win.IsEmbedded() && m.Source == win.Parent()
	}
}

type options struct {
	check    SenderCheck
	recorder *metric.Recorder
}

// Option configures a listener.
type Option func(*options)

// WithSenderCheck replaces the default FromParent check.
func WithSenderCheck(c SenderCheck) Option {
	return func(o *options) { o.check = c }
}

// WithRecorder counts commands by outcome.
func WithRecorder(r *metric.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// Listen installs a message listener on win that applies commands from the
// parent window to t. The returned function removes the listener.
func Listen(win *frame.Window, t Target, opts ...Option) func() {
	o := &options{check: FromParent(win)}
	for _, opt := range opts {
		opt(o)
	}
	rec := o.recorder.OrNop()

	return win.AddMessageListener(func(m frame.Message) {
		if !o.check(m) {
			rec.Commands.Increment("", string(Rejected))
			return
		}

		c, err := Decode(m.Data)
		if err != nil {
			slog.Debug("ignoring undecodable command", "error", err)
			rec.Commands.Increment("", string(Malformed))
			return
		}

		outcome := Apply(t, c)
		rec.Commands.Increment(label(c), string(outcome))
		slog.Debug("command handled", "command", c.Command, "outcome", outcome)
	})
}

// ListenDocument installs a listener for same-document command events
// sent with the communication service. The returned function removes it.
func ListenDocument(doc *frame.Node, t Target, opts ...Option) func() {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	rec := o.recorder.OrNop()

	return doc.AddEventListener(event.CommandEvent, func(ev frame.Event) {
		req, ok := ev.Detail.(Request)
		if !ok {
			rec.Commands.Increment("", string(Malformed))
			return
		}

		c, err := FromDocument(req.Command, req.Data)
		if err != nil {
			slog.Debug("ignoring undecodable document command", "command", req.Command, "error", err)
			rec.Commands.Increment(label(Command{Command: req.Command}), string(Malformed))
			return
		}

		outcome := Apply(t, c)
		rec.Commands.Increment(label(c), string(outcome))
	})
}

// Request is the detail of a same-document command event.
type Request struct {
	Command string `json:"command"`
	Data    any    `json:"data,omitempty"`
}

// label bounds metric cardinality to the known command names.
func label(c Command) string {
	switch c.Command {
	case SetActiveItem, UpdateConfig, Collapse, Expand:
		return c.Command
	default:
		return "other"
	}
}
