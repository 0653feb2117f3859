package host

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mchmarny/sidebar/pkg/bridge"
	"github.com/mchmarny/sidebar/pkg/comm"
	"github.com/mchmarny/sidebar/pkg/command"
	"github.com/mchmarny/sidebar/pkg/event"
	"github.com/mchmarny/sidebar/pkg/frame"
	"github.com/mchmarny/sidebar/pkg/logger"
	"github.com/mchmarny/sidebar/pkg/menu"
	"github.com/mchmarny/sidebar/pkg/metric"
	"github.com/mchmarny/sidebar/pkg/server"
	"github.com/mchmarny/sidebar/pkg/widget"
)

const (
	// DefaultHostOrigin is the origin of the remote host proxy window.
	DefaultHostOrigin = "http://localhost"

	// DefaultWidgetOrigin is the origin of the widget window.
	DefaultWidgetOrigin = "http://localhost:9876"

	maxCommandBytes = 1 << 20
)

// Options configure a Host.
type Options struct {
	Menu menu.Config

	Port int

	// HostOrigin and WidgetOrigin name the two windows.
	HostOrigin   string
	WidgetOrigin string

	// TargetOrigin restricts outbound parent messages. Empty means any origin.
	TargetOrigin string

	// AllowedOrigins limits WebSocket handshakes. Empty accepts every origin.
	AllowedOrigins []string

	TLS *server.TLSConfig
}

// Host wires a widget to its channels and serves it over HTTP.
type Host struct {
	Widget   *widget.Widget
	Comm     *comm.Service
	Bridge   *bridge.Bridge
	Registry *prometheus.Registry

	server server.Server
}

// New builds and attaches the widget. Call Close when done.
func New(opts Options) (*Host, error) {
	if opts.HostOrigin == "" {
		opts.HostOrigin = DefaultHostOrigin
	}
	if opts.WidgetOrigin == "" {
		opts.WidgetOrigin = DefaultWidgetOrigin
	}
	if opts.TargetOrigin == "" {
		opts.TargetOrigin = frame.AnyOrigin
	}
	if opts.Port == 0 {
		opts.Port = server.DefaultPort
	}

	reg := prometheus.NewRegistry()
	rec := metric.NewRecorder(reg)

	b := bridge.New(opts.HostOrigin, bridge.WithCheckOrigin(checkOrigin(opts.AllowedOrigins)))
	win := frame.NewEmbeddedWindow(opts.WidgetOrigin, b.Host())

	h := &Host{
		Bridge:   b,
		Registry: reg,
		Comm:     comm.New(win, comm.WithRecorder(rec)),
	}

	for _, kind := range event.Kinds {
		h.Comm.On(kind, comm.NewCallback(func(d event.Detail) {
			slog.Info("menu event", "kind", kind, "detail", d)
		}))
	}

	h.Widget = widget.New(win, opts.Menu,
		widget.WithTargetOrigin(opts.TargetOrigin),
		widget.WithRecorder(rec),
	)
	if err := h.Widget.Attach(win.Document()); err != nil {
		h.Close()
		return nil, fmt.Errorf("failed to attach widget: %w", err)
	}

	srvOpts := []server.Option{
		server.WithPort(opts.Port),
		server.WithErrorLog(logger.NewErrorLog()),
		server.WithSimpleHealth(),
		server.WithReadiness(h.Widget),
		server.WithMetrics(reg),
		server.WithHandler("GET /menu", h.Widget.Handler()),
		server.WithHandler("POST /command", h.commandHandler()),
		server.WithHandler("/ws", b.Handler(win)),
	}
	if opts.TLS != nil {
		srvOpts = append(srvOpts, server.WithTLS(*opts.TLS))
	}
	h.server = server.New(srvOpts...)

	return h, nil
}

// Handler returns the HTTP handler of the host.
func (h *Host) Handler() http.Handler {
	return h.server.Handler()
}

// Serve blocks until ctx is canceled or the server fails.
func (h *Host) Serve(ctx context.Context) error {
	return h.server.Serve(ctx)
}

// Close detaches the widget and releases every channel.
func (h *Host) Close() {
	if h.Widget != nil {
		h.Widget.Detach()
	}
	h.Comm.Close()
	h.Bridge.Close()
}

// Run builds a Host, serves it until ctx is canceled, then closes it.
func Run(ctx context.Context, opts Options) error {
	h, err := New(opts)
	if err != nil {
		return err
	}
	defer h.Close()

	return h.Serve(ctx)
}

// commandHandler accepts {command, data} and sends it to the widget in the
// same document, bypassing the cross-context channel.
func (h *Host) commandHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req command.Request
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCommandBytes))
		if err := dec.Decode(&req); err != nil || req.Command == "" {
			http.Error(w, "invalid command", http.StatusBadRequest)
			return
		}

		h.Comm.SendToMenu(req.Command, req.Data)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(h.Widget.State()); err != nil {
			slog.Error("failed to encode state", "error", err)
		}
	})
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return slices.Contains(allowed, u.Scheme+"://"+u.Host)
	}
}
