package event

import (
	"github.com/mchmarny/sidebar/pkg/frame"
)

// Sink delivers an event on one channel.
type Sink interface {
	// Channel names the channel for metrics and logs.
	Channel() string

	// Emit delivers the event and reports whether it was dispatched.
	// It must not block.
	Emit(kind Kind, d Detail) bool
}

// LocalSink dispatches a bubbling, composed event on the widget node so
// ancestors in the document observe it.
type LocalSink struct {
	Node *frame.Node
}

func (s LocalSink) Channel() string { return "local" }

func (s LocalSink) Emit(kind Kind, d Detail) bool {
	s.Node.DispatchEvent(frame.Event{
		Type:     string(kind),
		Detail:   d,
		Bubbles:  true,
		Composed: true,
	})
	return true
}

// GlobalSink dispatches the flattened payload on the window Channel.
type GlobalSink struct {
	Window *frame.Window
}

func (s GlobalSink) Channel() string { return "global" }

func (s GlobalSink) Emit(kind Kind, d Detail) bool {
	s.Window.DispatchEvent(frame.Event{
		Type:   Channel,
		Detail: Payload(kind, d),
	})
	return true
}

// ParentSink posts the flattened payload to the containing window.
// Top-level windows have no container and drop the event.
type ParentSink struct {
	Window *frame.Window

	// TargetOrigin restricts delivery to a parent origin. Empty means
	// frame.AnyOrigin.
	TargetOrigin string
}

func (s ParentSink) Channel() string { return "parent" }

func (s ParentSink) Emit(kind Kind, d Detail) bool {
	if !s.Window.IsEmbedded() {
		return false
	}

	target := s.TargetOrigin
	if target == "" {
		target = frame.AnyOrigin
	}

	return s.Window.Parent().PostMessage(Payload(kind, d), target, s.Window)
}
