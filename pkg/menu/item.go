package menu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Item represents a single entry in the sidebar.
type Item struct {
	// ID is the stable identifier of the item, expected to be unique within a Config.
	ID string `json:"id" yaml:"id" toml:"id"`

	// Label is the display text of the item.
	Label string `json:"label" yaml:"label" toml:"label"`

	// Icon is an optional free-form glyph shown next to the label.
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty"`

	// Section is the grouping key. Items without one belong to DefaultSection.
	Section string `json:"section,omitempty" yaml:"section,omitempty" toml:"section,omitempty"`

	// Disabled items can never become active.
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty" toml:"disabled,omitempty"`

	// Badge is a decorative annotation, e.g. an unread count.
	Badge Badge `json:"badge,omitempty" yaml:"badge,omitempty" toml:"badge,omitempty"`

	// Children are reserved for nested items. Selection never recurses into them.
	Children []Item `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

// Badge holds a badge value. Hosts send either strings or numbers,
// both are kept as text.
type Badge string

// UnmarshalJSON accepts a JSON string or number.
func (b *Badge) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid badge: %w", err)
		}
		*b = Badge(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid badge %s: %w", data, err)
	}
	*b = Badge(n.String())
	return nil
}

// UnmarshalYAML accepts any scalar.
func (b *Badge) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("invalid badge at line %d: expected scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*b = ""
		return nil
	}
	*b = Badge(node.Value)
	return nil
}

// UnmarshalTOML accepts a string, integer or float.
func (b *Badge) UnmarshalTOML(v any) error {
	*b = badgeOf(v)
	return nil
}

func badgeOf(v any) Badge {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return Badge(t)
	case int:
		return Badge(strconv.Itoa(t))
	case int64:
		return Badge(strconv.FormatInt(t, 10))
	case float64:
		return Badge(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		return Badge(fmt.Sprint(t))
	}
}

// clone returns a deep copy of the item.
func (i Item) clone() Item {
	if i.Children != nil {
		children := make([]Item, len(i.Children))
		for n, c := range i.Children {
			children[n] = c.clone()
		}
		i.Children = children
	}
	return i
}
