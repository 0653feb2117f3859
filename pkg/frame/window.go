package frame

import (
	"sync"

	"github.com/google/uuid"
)

// AnyOrigin matches every target origin in PostMessage.
const AnyOrigin = "*"

// Message is delivered to the message listeners of a Window.
type Message struct {
	// Source is the window that posted the message.
	Source *Window

	// Origin is the origin of the source window.
	Origin string

	// Data is the posted value, passed as is.
	Data any
}

// Window is an execution context. It may be embedded in a parent window,
// in which case messages can be posted across the boundary.
type Window struct {
	id     string
	origin string
	parent *Window
	doc    *Node

	messages registry[Message]

	mu     sync.Mutex
	events map[string]*registry[Event]
}

// NewWindow creates a top-level window for the given origin.
func NewWindow(origin string) *Window {
	w := &Window{
		id:     uuid.NewString(),
		origin: origin,
		doc:    NewNode("document"),
		events: make(map[string]*registry[Event]),
	}
	w.parent = w
	return w
}

// NewEmbeddedWindow creates a window contained in parent.
func NewEmbeddedWindow(origin string, parent *Window) *Window {
	w := NewWindow(origin)
	if parent != nil {
		w.parent = parent
	}
	return w
}

// ID returns the unique identity of the window.
func (w *Window) ID() string {
	return w.id
}

// Origin returns the window origin.
func (w *Window) Origin() string {
	return w.origin
}

// Parent returns the containing window. A top-level window is its own parent.
func (w *Window) Parent() *Window {
	return w.parent
}

// IsEmbedded reports whether w has a distinct containing window.
func (w *Window) IsEmbedded() bool {
	return w.parent != w
}

// Document returns the root node of the window document.
func (w *Window) Document() *Node {
	return w.doc
}

// AddMessageListener registers fn for posted messages and returns a function
// that removes it.
func (w *Window) AddMessageListener(fn func(Message)) func() {
	return w.messages.add(fn)
}

// MessageListenerCount returns the number of registered message listeners.
func (w *Window) MessageListenerCount() int {
	return w.messages.len()
}

// PostMessage delivers data to the message listeners of w on behalf of source.
// Delivery only happens when targetOrigin is AnyOrigin or equals the origin
// of w. Listeners run synchronously before PostMessage returns.
// It reports false when the target origin did not match.
func (w *Window) PostMessage(data any, targetOrigin string, source *Window) bool {
	if targetOrigin != AnyOrigin && targetOrigin != w.origin {
		return false
	}

	msg := Message{Source: source, Data: data}
	if source != nil {
		msg.Origin = source.origin
	}

	w.messages.dispatch("message", msg)
	return true
}

// AddEventListener registers fn for window-scoped events of the given type.
func (w *Window) AddEventListener(eventType string, fn func(Event)) func() {
	w.mu.Lock()
	r, ok := w.events[eventType]
	if !ok {
		r = &registry[Event]{}
		w.events[eventType] = r
	}
	w.mu.Unlock()

	return r.add(fn)
}

// DispatchEvent runs the window-scoped listeners for ev.Type.
func (w *Window) DispatchEvent(ev Event) {
	w.mu.Lock()
	r := w.events[ev.Type]
	w.mu.Unlock()

	if r != nil {
		r.dispatch(ev.Type, ev)
	}
}
