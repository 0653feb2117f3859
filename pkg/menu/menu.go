package menu

import (
	"errors"
	"fmt"
)

// DefaultSection is the group of items that declare no section.
const DefaultSection = "default"

// ErrInvalidConfig is returned when a config fails validation.
var ErrInvalidConfig = errors.New("invalid menu config")

// Config represents the full description of the sidebar.
type Config struct {
	// Title shown in the header
	Title string `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`

	// Logo shown in the header
	Logo string `json:"logo,omitempty" yaml:"logo,omitempty" toml:"logo,omitempty"`

	// Items in render order
	Items []Item `json:"items" yaml:"items" toml:"items"`

	// Footer is optional
	Footer *Footer `json:"footer,omitempty" yaml:"footer,omitempty" toml:"footer,omitempty"`
}

// Footer holds the footer presentation data.
type Footer struct {
	Company string `json:"company,omitempty" yaml:"company,omitempty" toml:"company,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
}

// Patch is a partial Config. Nil fields are left untouched by Apply.
type Patch struct {
	Title  *string `json:"title,omitempty"`
	Logo   *string `json:"logo,omitempty"`
	Items  []Item  `json:"items"`
	Footer *Footer `json:"footer,omitempty"`
}

// Section is a named group of items.
type Section struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Apply returns a copy of c with the fields present in p replaced.
// The merge is shallow: Items and Footer are swapped wholesale, never merged.
func (c Config) Apply(p Patch) Config {
	out := c.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Logo != nil {
		out.Logo = *p.Logo
	}
	if p.Items != nil {
		out.Items = Config{Items: p.Items}.Clone().Items
	}
	if p.Footer != nil {
		f := *p.Footer
		out.Footer = &f
	}
	return out
}

// Find returns the first top-level item with the given id.
func (c Config) Find(id string) (Item, bool) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Sections groups items by section in order of first appearance.
func (c Config) Sections() []Section {
	var out []Section
	index := make(map[string]int)

	for _, item := range c.Items {
		name := item.Section
		if name == "" {
			name = DefaultSection
		}
		n, ok := index[name]
		if !ok {
			n = len(out)
			index[name] = n
			out = append(out, Section{Name: name})
		}
		out[n].Items = append(out[n].Items, item)
	}

	return out
}

// Validate checks that every item has an id and label and that ids are unique.
func (c Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Items))
	var errs []error

	for n, item := range c.Items {
		if item.ID == "" {
			errs = append(errs, fmt.Errorf("item %d: missing id", n))
			continue
		}
		if item.Label == "" {
			errs = append(errs, fmt.Errorf("item %q: missing label", item.ID))
		}
		if _, ok := seen[item.ID]; ok {
			errs = append(errs, fmt.Errorf("item %q: duplicate id", item.ID))
		}
		seen[item.ID] = struct{}{}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	if c.Items != nil {
		items := make([]Item, len(c.Items))
		for n, item := range c.Items {
			items[n] = item.clone()
		}
		c.Items = items
	}
	if c.Footer != nil {
		f := *c.Footer
		c.Footer = &f
	}
	return c
}
