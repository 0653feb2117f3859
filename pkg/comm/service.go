// Package comm bridges the window-scoped menu channel into typed
// subscriptions, so embedding code can react to menu events without
// registering DOM-style listeners itself.
//
// A Service is meant to be created once per window and handed to the code
// that needs it. Dispatch iterates a snapshot of the callbacks registered
// for the event kind: callbacks added while an event is being dispatched
// first run on the next event, and callbacks removed during dispatch still
// run for the current one.
package comm

import (
	"log/slog"
	"sync"

	"github.com/mchmarny/sidebar/pkg/command"
	"github.com/mchmarny/sidebar/pkg/event"
	"github.com/mchmarny/sidebar/pkg/frame"
	"github.com/mchmarny/sidebar/pkg/metric"
)

// Callback is a registered subscriber. Callbacks are compared by pointer,
// so the same *Callback may be registered more than once.
type Callback struct {
	fn func(event.Detail)
}

// NewCallback wraps fn in a Callback.
func NewCallback(fn func(event.Detail)) *Callback {
	return &Callback{fn: fn}
}

// Service is the menu event hub of a window.
type Service struct {
	win      *frame.Window
	recorder *metric.Recorder

	mu        sync.Mutex
	listeners map[event.Kind][]*Callback
	stop      func()
	closeOnce sync.Once
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder counts callback failures.
func WithRecorder(r *metric.Recorder) Option {
	return func(s *Service) { s.recorder = r.OrNop() }
}

// New creates a Service and starts listening on the menu channel of win.
// Call Close to stop listening.
func New(win *frame.Window, opts ...Option) *Service {
	s := &Service{
		win:       win,
		recorder:  metric.NopRecorder(),
		listeners: make(map[event.Kind][]*Callback),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.stop = win.AddEventListener(event.Channel, s.handle)
	return s
}

// Close stops listening on the menu channel. Registered callbacks are kept.
func (s *Service) Close() {
	s.closeOnce.Do(s.stop)
}

// On appends cb to the callbacks of kind.
func (s *Service) On(kind event.Kind, cb *Callback) {
	if cb == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[kind] = append(s.listeners[kind], cb)
}

// Off removes the first registration of cb for kind. No-op if absent.
func (s *Service) Off(kind event.Kind, cb *Callback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cbs := s.listeners[kind]
	for i, c := range cbs {
		if c == cb {
			s.listeners[kind] = append(cbs[:i:i], cbs[i+1:]...)
			return
		}
	}
}

// Count returns the number of registrations for kind.
func (s *Service) Count(kind event.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners[kind])
}

// OnMenuReady subscribes fn to menu-ready and returns its Callback.
func (s *Service) OnMenuReady(fn func(event.Detail)) *Callback {
	return s.subscribe(event.KindReady, fn)
}

// OnItemSelected subscribes fn to menu-item-selected and returns its Callback.
func (s *Service) OnItemSelected(fn func(event.Detail)) *Callback {
	return s.subscribe(event.KindItemSelected, fn)
}

// OnMenuCollapsed subscribes fn to menu-collapsed and returns its Callback.
func (s *Service) OnMenuCollapsed(fn func(event.Detail)) *Callback {
	return s.subscribe(event.KindCollapsed, fn)
}

// OnMenuExpanded subscribes fn to menu-expanded and returns its Callback.
func (s *Service) OnMenuExpanded(fn func(event.Detail)) *Callback {
	return s.subscribe(event.KindExpanded, fn)
}

func (s *Service) subscribe(kind event.Kind, fn func(event.Detail)) *Callback {
	cb := NewCallback(fn)
	s.On(kind, cb)
	return cb
}

// SendToMenu dispatches a command event on the window document, where an
// attached widget picks it up.
func (s *Service) SendToMenu(name string, data any) {
	s.win.Document().DispatchEvent(frame.Event{
		Type:   event.CommandEvent,
		Detail: command.Request{Command: name, Data: data},
	})
}

func (s *Service) handle(ev frame.Event) {
	payload, ok := ev.Detail.(map[string]any)
	if !ok {
		return
	}

	kind, detail, ok := event.Split(payload)
	if !ok {
		return
	}

	s.mu.Lock()
	cbs := make([]*Callback, len(s.listeners[kind]))
	copy(cbs, s.listeners[kind])
	s.mu.Unlock()

	for _, cb := range cbs {
		s.invoke(kind, cb, detail)
	}
}

// invoke isolates a failing callback from its siblings.
func (s *Service) invoke(kind event.Kind, cb *Callback, d event.Detail) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("menu callback failed", "kind", kind, "panic", p)
			s.recorder.CallbackFailures.Increment(string(kind))
		}
	}()
	cb.fn(d)
}
