package glyph

import (
	"reflect"
	"testing"
)

func TestNewDropsEmptyEntries(t *testing.T) {
	tbl := New(map[string]string{
		"firefox": "\uf269",
		"":        "x",
		"blank":   "",
	})

	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tbl.Len())
	}
	if _, ok := tbl.Lookup("blank"); ok {
		t.Error("empty glyph should not be stored")
	}
}

func TestLookupIsExact(t *testing.T) {
	tbl := New(map[string]string{"firefox": "\uf269"})

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"firefox", "\uf269", true},
		{"Firefox", "", false},
		{"fire", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tbl.Lookup(tt.name)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Lookup(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMergeOverridesWin(t *testing.T) {
	base := New(map[string]string{"terminal": "T", "code": "C"})
	overrides := New(map[string]string{"terminal": "X", "custom": "Z"})

	merged := Merge(base, overrides)

	want := map[string]string{"terminal": "X", "code": "C", "custom": "Z"}
	for name, g := range want {
		got, ok := merged.Lookup(name)
		if !ok || got != g {
			t.Errorf("Lookup(%q) = %q, %v; want %q", name, got, ok, g)
		}
	}
	if merged.Len() != 3 {
		t.Errorf("Len() = %d, want 3", merged.Len())
	}

	// Inputs are untouched
	if g, _ := base.Lookup("terminal"); g != "T" {
		t.Errorf("base mutated: terminal = %q", g)
	}
}

func TestMergeNil(t *testing.T) {
	base := New(map[string]string{"a": "1"})

	if got := Merge(base, nil); got.Len() != 1 {
		t.Errorf("Merge(base, nil).Len() = %d, want 1", got.Len())
	}
	if got := Merge(nil, base); got.Len() != 1 {
		t.Errorf("Merge(nil, base).Len() = %d, want 1", got.Len())
	}
	if got := Merge(nil, nil); got.Len() != 0 {
		t.Errorf("Merge(nil, nil).Len() = %d, want 0", got.Len())
	}
}

func TestNilTable(t *testing.T) {
	var tbl *Table
	if _, ok := tbl.Lookup("x"); ok {
		t.Error("nil table lookup should miss")
	}
	if tbl.Len() != 0 || tbl.Names() != nil {
		t.Error("nil table should be empty")
	}
}

func TestNamesSorted(t *testing.T) {
	tbl := New(map[string]string{"b": "2", "a": "1", "c": "3"})
	if got := tbl.Names(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Names() = %v", got)
	}
}
