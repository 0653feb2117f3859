package command

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mchmarny/sidebar/pkg/menu"
)

// Names of the recognized commands.
const (
	SetActiveItem = "setActiveItem"
	UpdateConfig  = "updateConfig"
	Collapse      = "collapse"
	Expand        = "expand"
)

// Outcome describes what happened to a command.
type Outcome string

const (
	Applied   Outcome = "applied"
	NoOp      Outcome = "noop"
	Ignored   Outcome = "ignored"
	Malformed Outcome = "malformed"
	Rejected  Outcome = "rejected"
)

// ErrMalformed is returned when a command cannot be decoded.
var ErrMalformed = errors.New("malformed command")

// Command is an inbound request from the containing context.
type Command struct {
	Command string      `json:"command"`
	ItemID  string      `json:"itemId,omitempty"`
	Config  *menu.Patch `json:"config,omitempty"`
}

// Target is the state machine commands are applied to.
type Target interface {
	SelectItem(id string) bool
	UpdateConfig(p menu.Patch)
	SetCollapsed(collapsed bool)
}

// Decode converts a posted value into a Command. JSON text is parsed,
// structured values are converted through their JSON form.
func Decode(data any) (Command, error) {
	var raw []byte

	switch v := data.(type) {
	case Command:
		return v, nil
	case *Command:
		if v == nil {
			return Command{}, ErrMalformed
		}
		return *v, nil
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	case string:
		raw = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		raw = b
	}

	var c Command
	if err := json.Unmarshal(raw, &c); err != nil {
		return Command{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return c, nil
}

// FromDocument builds a Command from a same-document {command, data} pair.
// For setActiveItem data is the item id, or an object with an itemId.
// For updateConfig data is the partial config.
func FromDocument(name string, data any) (Command, error) {
	c := Command{Command: name}

	switch name {
	case SetActiveItem:
		switch v := data.(type) {
		case string:
			c.ItemID = v
		case nil:
		default:
			d, err := Decode(v)
			if err != nil {
				return Command{}, err
			}
			c.ItemID = d.ItemID
		}
	case UpdateConfig:
		switch v := data.(type) {
		case menu.Patch:
			c.Config = &v
		case *menu.Patch:
			c.Config = v
		case nil:
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return Command{}, fmt.Errorf("%w: %w", ErrMalformed, err)
			}
			var p menu.Patch
			if err := json.Unmarshal(b, &p); err != nil {
				return Command{}, fmt.Errorf("%w: %w", ErrMalformed, err)
			}
			c.Config = &p
		}
	}

	return c, nil
}

// Apply maps c onto t. Unknown commands and commands missing their
// required field leave t untouched.
func Apply(t Target, c Command) Outcome {
	switch c.Command {
	case SetActiveItem:
		if c.ItemID == "" {
			return Malformed
		}
		if !t.SelectItem(c.ItemID) {
			return NoOp
		}
		return Applied
	case UpdateConfig:
		if c.Config == nil {
			return Malformed
		}
		t.UpdateConfig(*c.Config)
		return Applied
	case Collapse:
		t.SetCollapsed(true)
		return Applied
	case Expand:
		t.SetCollapsed(false)
		return Applied
	default:
		return Ignored
	}
}
