package widget

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/mchmarny/sidebar/pkg/command"
	"github.com/mchmarny/sidebar/pkg/event"
	"github.com/mchmarny/sidebar/pkg/frame"
	"github.com/mchmarny/sidebar/pkg/menu"
	"github.com/mchmarny/sidebar/pkg/metric"
)

// DefaultName is the node name of the widget.
const DefaultName = "menu-sidebar"

// ErrAttached is returned when attaching a widget that is already attached.
var ErrAttached = errors.New("widget already attached")

// State is the UI state owned by the widget.
type State struct {
	Collapsed bool `json:"collapsed"`

	// ActiveItemID is empty when nothing is selected.
	ActiveItemID string `json:"activeItemId,omitempty"`
}

// Widget is the sidebar state machine. It owns the collapsed flag and the
// active item, applies commands, and broadcasts every change.
//
// State changes are serialized and each one queues its event in commit
// order. One caller at a time drains the queue, outside the state lock, so
// listeners may call back into the widget: their events are queued behind
// the one being delivered. Observers therefore always see events in the
// order the state changed, and the last event matches State.
type Widget struct {
	win      *frame.Window
	node     *frame.Node
	emitter  *event.Emitter
	recorder *metric.Recorder

	mu       sync.Mutex
	cfg      menu.Config
	state    State
	attached bool
	release  []func()

	pending  []pendingEvent
	emitting bool
}

type pendingEvent struct {
	kind   event.Kind
	detail event.Detail
}

// Option configures a Widget.
type Option func(*settings)

type settings struct {
	name         string
	targetOrigin string
	recorder     *metric.Recorder
	sinks        func(*frame.Window, *frame.Node) []event.Sink
}

// WithName sets the widget node name.
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithTargetOrigin restricts messages posted to the parent window to the
// given origin. The default is frame.AnyOrigin.
func WithTargetOrigin(origin string) Option {
	return func(s *settings) { s.targetOrigin = origin }
}

// WithRecorder enables protocol metrics.
func WithRecorder(r *metric.Recorder) Option {
	return func(s *settings) { s.recorder = r }
}

// WithSinks replaces the default local, global and parent sinks.
func WithSinks(fn func(win *frame.Window, node *frame.Node) []event.Sink) Option {
	return func(s *settings) { s.sinks = fn }
}

// DefaultSinks returns the local, global and parent sinks in emission order.
func DefaultSinks(win *frame.Window, node *frame.Node, targetOrigin string) []event.Sink {
	return []event.Sink{
		event.LocalSink{Node: node},
		event.GlobalSink{Window: win},
		event.ParentSink{Window: win, TargetOrigin: targetOrigin},
	}
}

// New creates a detached widget living in win.
func New(win *frame.Window, cfg menu.Config, opts ...Option) *Widget {
	s := &settings{
		name:         DefaultName,
		targetOrigin: frame.AnyOrigin,
	}
	for _, opt := range opts {
		opt(s)
	}

	node := frame.NewNode(s.name)

	sinks := DefaultSinks(win, node, s.targetOrigin)
	if s.sinks != nil {
		sinks = s.sinks(win, node)
	}

	return &Widget{
		win:      win,
		node:     node,
		cfg:      cfg.Clone(),
		recorder: s.recorder.OrNop(),
		emitter:  event.NewEmitter(s.recorder, sinks...),
	}
}

// Node returns the widget node.
func (w *Widget) Node() *frame.Node {
	return w.node
}

// Attach mounts the widget under parent, starts listening for commands and
// emits menu-ready with the current config.
func (w *Widget) Attach(parent *frame.Node) error {
	w.mu.Lock()
	if w.attached {
		w.mu.Unlock()
		return ErrAttached
	}
	w.attached = true

	parent.AppendChild(w.node)
	w.release = []func(){
		command.Listen(w.win, w, command.WithRecorder(w.recorder)),
		command.ListenDocument(w.win.Document(), w, command.WithRecorder(w.recorder)),
	}
	items := len(w.cfg.Items)
	w.queue(event.KindReady, event.Ready(w.cfg.Clone()))
	w.mu.Unlock()

	slog.Info("widget attached", "window", w.win.ID(), "items", items)

	w.flush()
	return nil
}

// Detach stops listening for commands and unmounts the widget.
// State is kept. Detaching a detached widget is a no-op.
func (w *Widget) Detach() {
	w.mu.Lock()
	if !w.attached {
		w.mu.Unlock()
		return
	}
	w.attached = false
	release := w.release
	w.release = nil
	w.mu.Unlock()

	for _, fn := range release {
		fn()
	}
	w.node.Remove()

	slog.Info("widget detached", "window", w.win.ID())
}

// Attached reports whether the widget is attached.
func (w *Widget) Attached() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attached
}

// SelectItem activates the first item with the given id and emits
// menu-item-selected. Unknown and disabled items are ignored and false
// is returned.
func (w *Widget) SelectItem(id string) bool {
	w.mu.Lock()
	item, ok := w.cfg.Find(id)
	if !ok || item.Disabled {
		w.mu.Unlock()
		return false
	}
	w.state.ActiveItemID = id
	w.queue(event.KindItemSelected, event.ItemSelected(item))
	w.mu.Unlock()

	w.flush()
	return true
}

// SetActiveItem is the public equivalent of the setActiveItem command.
func (w *Widget) SetActiveItem(id string) bool {
	return w.SelectItem(id)
}

// ToggleCollapse flips the collapsed flag, emits menu-collapsed or
// menu-expanded and returns the new value.
func (w *Widget) ToggleCollapse() bool {
	w.mu.Lock()
	w.state.Collapsed = !w.state.Collapsed
	collapsed := w.state.Collapsed
	w.queue(event.CollapseKind(collapsed), event.Collapse(collapsed))
	w.mu.Unlock()

	w.flush()
	return collapsed
}

// SetCollapsed forces the collapsed flag. The event is emitted even when
// the value does not change.
func (w *Widget) SetCollapsed(collapsed bool) {
	w.mu.Lock()
	w.state.Collapsed = collapsed
	w.queue(event.CollapseKind(collapsed), event.Collapse(collapsed))
	w.mu.Unlock()

	w.flush()
}

// queue records an event for the change just committed. Callers hold w.mu.
func (w *Widget) queue(kind event.Kind, d event.Detail) {
	w.pending = append(w.pending, pendingEvent{kind: kind, detail: d})
}

// flush delivers queued events in order. If another call is already
// delivering, including an outer call on this goroutine, it returns at once
// and that call delivers the new events too.
func (w *Widget) flush() {
	w.mu.Lock()
	if w.emitting {
		w.mu.Unlock()
		return
	}
	w.emitting = true

	defer func() {
		if p := recover(); p != nil {
			w.mu.Lock()
			w.emitting = false
			w.pending = nil
			w.mu.Unlock()
			panic(p)
		}
	}()

	for len(w.pending) > 0 {
		next := w.pending[0]
		w.pending[0] = pendingEvent{}
		w.pending = w.pending[1:]
		w.mu.Unlock()

		w.emitter.Emit(next.kind, next.detail)

		w.mu.Lock()
	}
	w.emitting = false
	w.pending = nil
	w.mu.Unlock()
}

// Collapse is SetCollapsed(true).
func (w *Widget) Collapse() { w.SetCollapsed(true) }

// Expand is SetCollapsed(false).
func (w *Widget) Expand() { w.SetCollapsed(false) }

// UpdateConfig shallow-merges p into the config. State is not touched,
// so the active item may refer to an item that no longer exists.
func (w *Widget) UpdateConfig(p menu.Patch) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cfg = w.cfg.Apply(p)
}

// State returns a copy of the widget state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Config returns a copy of the current config.
func (w *Widget) Config() menu.Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg.Clone()
}

// Snapshot is the JSON view of a widget.
type Snapshot struct {
	Config   menu.Config    `json:"config"`
	Sections []menu.Section `json:"sections"`
	State    State          `json:"state"`
	Attached bool           `json:"attached"`
}

// Snapshot returns a consistent view of config and state.
func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	cfg := w.cfg.Clone()
	return Snapshot{
		Config:   cfg,
		Sections: cfg.Sections(),
		State:    w.state,
		Attached: w.attached,
	}
}

// Handler returns an HTTP handler that responds with the widget snapshot as JSON.
func (w *Widget) Handler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		slog.Debug("handling menu request",
			"method", r.Method,
			"url", r.URL.Path,
		)

		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(rw).Encode(w.Snapshot()); err != nil {
			slog.Error("failed to encode menu", "error", err)
			return
		}
	})
}

// Ready reports an error until the widget is attached.
func (w *Widget) Ready(_ context.Context) error {
	if !w.Attached() {
		return errNotAttached
	}
	return nil
}

var errNotAttached = errors.New("widget not attached")
