package event

import "github.com/mchmarny/sidebar/pkg/menu"

// Kind identifies an outbound menu event.
type Kind string

const (
	KindReady        Kind = "menu-ready"
	KindItemSelected Kind = "menu-item-selected"
	KindCollapsed    Kind = "menu-collapsed"
	KindExpanded     Kind = "menu-expanded"
)

const (
	// Channel is the window-scoped event name carrying every menu event.
	Channel = "oc-menu-channel"

	// CommandEvent is the document event used to send commands to a widget
	// within the same document.
	CommandEvent = "menu-command"

	// TypeField is the payload key holding the event kind.
	TypeField = "type"
)

// Kinds lists every outbound event kind.
var Kinds = []Kind{KindReady, KindItemSelected, KindCollapsed, KindExpanded}

// Detail is the payload of an event.
type Detail map[string]any

// ItemSelected is the detail of a menu-item-selected event.
func ItemSelected(item menu.Item) Detail {
	return Detail{
		"menuId":    item.ID,
		"menuLabel": item.Label,
		"menuIcon":  item.Icon,
		"data":      item,
	}
}

// Collapse is the detail of a menu-collapsed or menu-expanded event.
func Collapse(collapsed bool) Detail {
	return Detail{"collapsed": collapsed}
}

// CollapseKind returns the event kind for a collapsed value.
func CollapseKind(collapsed bool) Kind {
	if collapsed {
		return KindCollapsed
	}
	return KindExpanded
}

// Ready is the detail of the menu-ready event.
func Ready(cfg menu.Config) Detail {
	return Detail{"ready": true, "config": cfg}
}

// Payload flattens kind and detail into a single map: {type, ...detail}.
func Payload(kind Kind, d Detail) map[string]any {
	out := make(map[string]any, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	out[TypeField] = string(kind)
	return out
}

// Split is the inverse of Payload. It returns false when the payload
// carries no string type.
func Split(payload map[string]any) (Kind, Detail, bool) {
	t, ok := payload[TypeField].(string)
	if !ok {
		return "", nil, false
	}

	d := make(Detail, len(payload))
	for k, v := range payload {
		if k != TypeField {
			d[k] = v
		}
	}
	return Kind(t), d, true
}
