package event

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mchmarny/sidebar/pkg/frame"
	"github.com/mchmarny/sidebar/pkg/menu"
	"github.com/mchmarny/sidebar/pkg/metric"
)

type recordingSink struct {
	name string
	log  *[]string
}

func (s recordingSink) Channel() string { return s.name }

func (s recordingSink) Emit(kind Kind, _ Detail) bool {
	*s.log = append(*s.log, s.name+":"+string(kind))
	return true
}

func TestEmitterOrder(t *testing.T) {
	var log []string
	e := NewEmitter(nil,
		recordingSink{"local", &log},
		recordingSink{"global", &log},
		recordingSink{"parent", &log},
	)

	e.Emit(KindCollapsed, Collapse(true))

	want := []string{"local:menu-collapsed", "global:menu-collapsed", "parent:menu-collapsed"}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, log)
		}
	}
}

func TestPayloadSplit(t *testing.T) {
	p := Payload(KindItemSelected, ItemSelected(menu.Item{ID: "a", Label: "A", Icon: "*"}))
	if p[TypeField] != "menu-item-selected" {
		t.Fatalf("unexpected type: %v", p[TypeField])
	}

	kind, d, ok := Split(p)
	if !ok || kind != KindItemSelected {
		t.Fatalf("split failed: %v %v", kind, ok)
	}
	if _, has := d[TypeField]; has {
		t.Error("type leaked into detail")
	}
	if d["menuId"] != "a" || d["menuLabel"] != "A" || d["menuIcon"] != "*" {
		t.Errorf("unexpected detail: %v", d)
	}

	if _, _, ok := Split(map[string]any{"menuId": "a"}); ok {
		t.Error("split accepted payload without type")
	}
}

func TestCollapseKind(t *testing.T) {
	if CollapseKind(true) != KindCollapsed || CollapseKind(false) != KindExpanded {
		t.Fatal("unexpected collapse kind mapping")
	}
}

func TestSinksOnFrame(t *testing.T) {
	host := frame.NewWindow("https://host.test")
	win := frame.NewEmbeddedWindow("https://widget.test", host)
	node := frame.NewNode("menu-sidebar")
	win.Document().AppendChild(node)

	var order []string
	win.Document().AddEventListener(string(KindExpanded), func(ev frame.Event) {
		if !ev.Bubbles || !ev.Composed {
			t.Error("local event must bubble and compose")
		}
		order = append(order, "local")
	})
	win.AddEventListener(Channel, func(ev frame.Event) {
		p := ev.Detail.(map[string]any)
		if p[TypeField] != string(KindExpanded) || p["collapsed"] != false {
			t.Errorf("unexpected global payload: %v", p)
		}
		order = append(order, "global")
	})
	host.AddMessageListener(func(m frame.Message) {
		if m.Source != win {
			t.Error("unexpected message source")
		}
		order = append(order, "parent")
	})

	NewEmitter(nil,
		LocalSink{Node: node},
		GlobalSink{Window: win},
		ParentSink{Window: win},
	).Emit(KindExpanded, Collapse(false))

	want := []string{"local", "global", "parent"}
	if len(order) != 3 {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestParentSinkTopLevel(t *testing.T) {
	top := frame.NewWindow("https://host.test")
	got := 0
	top.AddMessageListener(func(frame.Message) { got++ })

	ParentSink{Window: top}.Emit(KindReady, Ready(menu.Config{}))

	if got != 0 {
		t.Fatal("top-level window posted to itself")
	}
}

func TestParentSinkTargetOrigin(t *testing.T) {
	host := frame.NewWindow("https://host.test")
	win := frame.NewEmbeddedWindow("https://widget.test", host)
	got := 0
	host.AddMessageListener(func(frame.Message) { got++ })

	ParentSink{Window: win, TargetOrigin: "https://other.test"}.Emit(KindReady, Ready(menu.Config{}))
	ParentSink{Window: win, TargetOrigin: "https://host.test"}.Emit(KindReady, Ready(menu.Config{}))

	if got != 1 {
		t.Fatalf("expected 1 delivery, got %d", got)
	}
}

func TestChannelName(t *testing.T) {
	if Channel != "oc-menu-channel" {
		t.Fatalf("global channel renamed: %q", Channel)
	}
}

func TestEmitterCountsDeliveredOnly(t *testing.T) {
	tests := []struct {
		name   string
		win    func() *frame.Window
		origin string
		parent float64
	}{
		{"top level", func() *frame.Window { return frame.NewWindow("https://host.test") }, "", 0},
		{"origin mismatch", func() *frame.Window {
			return frame.NewEmbeddedWindow("https://widget.test", frame.NewWindow("https://host.test"))
		}, "https://other.test", 0},
		{"delivered", func() *frame.Window {
			return frame.NewEmbeddedWindow("https://widget.test", frame.NewWindow("https://host.test"))
		}, "https://host.test", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			rec := metric.NewRecorder(reg)
			win := tt.win()

			NewEmitter(rec,
				GlobalSink{Window: win},
				ParentSink{Window: win, TargetOrigin: tt.origin},
			).Emit(KindExpanded, Collapse(false))

			out, err := reg.Gather()
			if err != nil {
				t.Fatalf("gather: %v", err)
			}
			counts := map[string]float64{}
			for _, mf := range out {
				if mf.GetName() != "sidebar_events_emitted_total" {
					continue
				}
				for _, m := range mf.GetMetric() {
					for _, l := range m.GetLabel() {
						if l.GetName() == "channel" {
							counts[l.GetValue()] = m.GetCounter().GetValue()
						}
					}
				}
			}

			if counts["global"] != 1 {
				t.Errorf("expected 1 global emission, got %v", counts["global"])
			}
			if counts["parent"] != tt.parent {
				t.Errorf("expected %v parent emissions, got %v", tt.parent, counts["parent"])
			}
		})
	}
}
