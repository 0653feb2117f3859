package menu

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testConfig() Config {
	return Config{
		Title: "Test",
		Items: []Item{
			{ID: "a", Label: "A", Section: "One"},
			{ID: "b", Label: "B"},
			{ID: "c", Label: "C", Section: "One", Disabled: true},
			{ID: "d", Label: "D", Section: "Two"},
		},
		Footer: &Footer{Company: "Acme", Version: "1.0"},
	}
}

func TestApplyReplacesItems(t *testing.T) {
	cfg := testConfig()
	next := cfg.Apply(Patch{Items: []Item{{ID: "x", Label: "X"}}})

	if len(next.Items) != 1 || next.Items[0].ID != "x" {
		t.Fatalf("expected items to be replaced, got %+v", next.Items)
	}
	if _, ok := next.Find("a"); ok {
		t.Fatal("old item still present after replace")
	}
	if next.Title != "Test" {
		t.Errorf("title changed: %q", next.Title)
	}
	if next.Footer == nil || next.Footer.Company != "Acme" {
		t.Errorf("footer changed: %+v", next.Footer)
	}
	if len(cfg.Items) != 4 {
		t.Errorf("source config mutated: %+v", cfg.Items)
	}
}

func TestApplyReplacesFooterWholesale(t *testing.T) {
	cfg := testConfig()
	next := cfg.Apply(Patch{Footer: &Footer{Version: "2.0"}})

	if next.Footer.Company != "" {
		t.Errorf("footer merged instead of replaced: %+v", next.Footer)
	}
	if next.Footer.Version != "2.0" {
		t.Errorf("unexpected footer version: %q", next.Footer.Version)
	}
	if len(next.Items) != 4 {
		t.Errorf("items changed: %d", len(next.Items))
	}
}

func TestApplyEmptyPatch(t *testing.T) {
	cfg := testConfig()
	next := cfg.Apply(Patch{})
	if next.Title != cfg.Title || len(next.Items) != len(cfg.Items) {
		t.Fatalf("empty patch changed config: %+v", next)
	}

	title := ""
	next = cfg.Apply(Patch{Title: &title, Items: []Item{}})
	if next.Title != "" || len(next.Items) != 0 {
		t.Fatalf("explicit zero values not applied: %+v", next)
	}
}

func TestPatchJSON(t *testing.T) {
	var p Patch
	if err := json.Unmarshal([]byte(`{"title":"New"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Title == nil || *p.Title != "New" {
		t.Errorf("title not decoded: %+v", p)
	}
	if p.Items != nil || p.Footer != nil || p.Logo != nil {
		t.Errorf("absent fields decoded as present: %+v", p)
	}

	if err := json.Unmarshal([]byte(`{"items":[]}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Items == nil {
		t.Error("empty items decoded as absent")
	}
}

func TestFindFirstMatch(t *testing.T) {
	cfg := Config{Items: []Item{
		{ID: "dup", Label: "First"},
		{ID: "dup", Label: "Second"},
	}}

	item, ok := cfg.Find("dup")
	if !ok {
		t.Fatal("expected item")
	}
	if item.Label != "First" {
		t.Errorf("expected first match, got %q", item.Label)
	}

	if _, ok := cfg.Find("missing"); ok {
		t.Error("found nonexistent item")
	}
}

func TestSections(t *testing.T) {
	sections := testConfig().Sections()

	want := []struct {
		name string
		ids  []string
	}{
		{"One", []string{"a", "c"}},
		{DefaultSection, []string{"b"}},
		{"Two", []string{"d"}},
	}

	if len(sections) != len(want) {
		t.Fatalf("expected %d sections, got %d", len(want), len(sections))
	}
	for n, w := range want {
		if sections[n].Name != w.name {
			t.Errorf("section %d: expected %q, got %q", n, w.name, sections[n].Name)
		}
		for i, id := range w.ids {
			if sections[n].Items[i].ID != id {
				t.Errorf("section %q item %d: expected %q, got %q", w.name, i, id, sections[n].Items[i].ID)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		items   []Item
		wantErr bool
	}{
		{"valid", []Item{{ID: "a", Label: "A"}}, false},
		{"empty", nil, false},
		{"missing id", []Item{{Label: "A"}}, true},
		{"missing label", []Item{{ID: "a"}}, true},
		{"duplicate", []Item{{ID: "a", Label: "A"}, {ID: "a", Label: "B"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Config{Items: tt.items}.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	cfg := Config{Items: []Item{{ID: "a", Label: "A", Children: []Item{{ID: "a1", Label: "A1"}}}}}
	c := cfg.Clone()
	c.Items[0].Label = "changed"
	c.Items[0].Children[0].Label = "changed"

	if cfg.Items[0].Label != "A" || cfg.Items[0].Children[0].Label != "A1" {
		t.Fatalf("clone shares memory with source: %+v", cfg.Items[0])
	}
}

func TestBadgeJSON(t *testing.T) {
	var items []Item
	data := `[{"id":"a","label":"A","badge":12},{"id":"b","label":"B","badge":"new"},{"id":"c","label":"C"}]`
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for n, want := range []Badge{"12", "new", ""} {
		if items[n].Badge != want {
			t.Errorf("item %d: expected badge %q, got %q", n, want, items[n].Badge)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		ext  string
		data string
	}{
		{".yaml", "title: Files\nitems:\n  - id: a\n    label: A\n    badge: 3\n  - id: b\n    label: B\n    disabled: true\nfooter:\n  company: Acme\n"},
		{".toml", "title = \"Files\"\n[[items]]\nid = \"a\"\nlabel = \"A\"\nbadge = 3\n[[items]]\nid = \"b\"\nlabel = \"B\"\ndisabled = true\n[footer]\ncompany = \"Acme\"\n"},
		{".json", `{"title":"Files","items":[{"id":"a","label":"A","badge":3},{"id":"b","label":"B","disabled":true}],"footer":{"company":"Acme"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			cfg, err := Parse(tt.ext, []byte(tt.data))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if cfg.Title != "Files" || len(cfg.Items) != 2 {
				t.Fatalf("unexpected config: %+v", cfg)
			}
			if cfg.Items[0].Badge != "3" {
				t.Errorf("expected badge 3, got %q", cfg.Items[0].Badge)
			}
			if !cfg.Items[1].Disabled {
				t.Error("expected second item disabled")
			}
			if cfg.Footer == nil || cfg.Footer.Company != "Acme" {
				t.Errorf("unexpected footer: %+v", cfg.Footer)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	if _, err := Parse(".xml", []byte("<menu/>")); err == nil {
		t.Error("expected unsupported format error")
	}
	if _, err := Parse(".yaml", []byte("items:\n  - id: a\n    label: A\n  - id: a\n    label: B\n")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected duplicate ids to be rejected, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yml")
	if err := os.WriteFile(path, []byte("items:\n  - id: home\n    label: Home\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := cfg.Find("home"); !ok {
		t.Errorf("expected home item, got %+v", cfg.Items)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
