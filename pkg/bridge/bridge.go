// Package bridge carries the cross-context channel over a WebSocket.
//
// The remote host application plays the parent window. The bridge keeps a
// proxy window for it: the widget window is embedded in the proxy, frames
// received from the host are posted to the widget window with the proxy as
// source, and messages the widget posts to its parent are written back to
// the host as JSON text frames.
//
// Writes never happen on the posting goroutine. Each connection has a
// bounded outbox drained by its own writer; frames posted while the outbox
// is full are dropped.
package bridge

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mchmarny/sidebar/pkg/frame"
)

const (
	// DefaultWriteTimeout bounds a single write to the host.
	DefaultWriteTimeout = 5 * time.Second

	// DefaultReadLimit is the largest frame accepted from the host.
	DefaultReadLimit = 1 << 20 // 1 MB

	// DefaultOutboxSize is the number of frames buffered per connection.
	DefaultOutboxSize = 64
)

// Bridge connects a remote host to an embedded widget window.
type Bridge struct {
	host     *frame.Window
	upgrader websocket.Upgrader

	writeTimeout time.Duration
	readLimit    int64
	outboxSize   int

	mu   sync.Mutex
	conn *hostConn
	stop func()
}

// hostConn is one host connection and its outbox.
type hostConn struct {
	ws     *websocket.Conn
	outbox chan []byte
	done   chan struct{}
	once   sync.Once
}

func (c *hostConn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithCheckOrigin sets the handshake origin check. The default accepts any origin.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(b *Bridge) { b.upgrader.CheckOrigin = fn }
}

// WithWriteTimeout sets the write deadline for frames sent to the host.
func WithWriteTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.writeTimeout = d }
}

// WithOutboxSize sets how many frames may wait for the writer per connection.
func WithOutboxSize(n int) Option {
	return func(b *Bridge) {
		if n > 0 {
			b.outboxSize = n
		}
	}
}

// New creates a bridge whose proxy window has the given host origin.
func New(hostOrigin string, opts ...Option) *Bridge {
	b := &Bridge{
		host: frame.NewWindow(hostOrigin),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		writeTimeout: DefaultWriteTimeout,
		readLimit:    DefaultReadLimit,
		outboxSize:   DefaultOutboxSize,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.stop = b.host.AddMessageListener(b.forward)
	return b
}

// Host returns the proxy window standing in for the remote host.
// Widget windows should be created embedded in it.
func (b *Bridge) Host() *frame.Window {
	return b.host
}

// Connected reports whether a host is connected.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

// Close disconnects the host and stops forwarding.
func (b *Bridge) Close() {
	b.stop()

	b.mu.Lock()
	conn := b.conn
	b.conn = nil
	b.mu.Unlock()

	if conn != nil {
		conn.close()
	}
}

// Handler returns the WebSocket endpoint a host connects to. Frames received
// on it are posted to child as messages from the host proxy. A new connection
// replaces the previous one.
func (b *Bridge) Handler(child *frame.Window) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("failed to upgrade host connection", "error", err)
			return
		}
		conn.SetReadLimit(b.readLimit)

		hc := &hostConn{
			ws:     conn,
			outbox: make(chan []byte, b.outboxSize),
			done:   make(chan struct{}),
		}
		go b.write(hc)

		b.mu.Lock()
		prev := b.conn
		b.conn = hc
		b.mu.Unlock()

		if prev != nil {
			prev.close()
		}

		slog.Info("host connected", "remote", r.RemoteAddr)
		b.read(hc, child)
		slog.Info("host disconnected", "remote", r.RemoteAddr)
	})
}

func (b *Bridge) read(hc *hostConn, child *frame.Window) {
	defer func() {
		b.mu.Lock()
		if b.conn == hc {
			b.conn = nil
		}
		b.mu.Unlock()
		hc.close()
	}()

	for {
		kind, data, err := hc.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("host connection closed", "error", err)
			}
			return
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}

		child.PostMessage(json.RawMessage(data), frame.AnyOrigin, b.host)
	}
}

// write drains the outbox of hc until the connection closes.
func (b *Bridge) write(hc *hostConn) {
	for {
		select {
		case <-hc.done:
			return
		case data := <-hc.outbox:
			if err := hc.ws.SetWriteDeadline(time.Now().Add(b.writeTimeout)); err != nil {
				slog.Warn("failed to set write deadline", "error", err)
			}
			if err := hc.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Warn("failed to write to host", "error", err)
				hc.close()
				return
			}
		}
	}
}

// forward queues a message posted to the host proxy for the connected host.
// Without a connection, or with a full outbox, the message is dropped.
func (b *Bridge) forward(m frame.Message) {
	b.mu.Lock()
	hc := b.conn
	b.mu.Unlock()

	if hc == nil {
		return
	}

	data, err := json.Marshal(m.Data)
	if err != nil {
		slog.Error("failed to encode message for host", "error", err)
		return
	}

	select {
	case hc.outbox <- data:
	case <-hc.done:
	default:
		slog.Warn("host outbox full, dropping message", "size", cap(hc.outbox))
	}
}
