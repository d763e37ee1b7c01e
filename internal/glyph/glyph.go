// Package glyph holds the icon-name to glyph tables used to decorate
// workspace labels.
package glyph

import "sort"

// Table maps canonical icon names to a single display glyph.
// A Table is immutable once built and safe for concurrent use.
type Table struct {
	glyphs map[string]string
}

// New builds a Table from a name -> glyph map. Entries with an empty name
// or an empty glyph are dropped.
func New(m map[string]string) *Table {
	t := &Table{glyphs: make(map[string]string, len(m))}
	for name, g := range m {
		if name == "" || g == "" {
			continue
		}
		t.glyphs[name] = g
	}
	return t
}

// Merge combines a base table with overrides. Names present in both take
// the override's glyph. Either argument may be nil.
func Merge(base, overrides *Table) *Table {
	t := &Table{glyphs: make(map[string]string, base.Len()+overrides.Len())}
	if base != nil {
		for name, g := range base.glyphs {
			t.glyphs[name] = g
		}
	}
	if overrides != nil {
		for name, g := range overrides.glyphs {
			t.glyphs[name] = g
		}
	}
	return t
}

// Lookup returns the glyph stored under the exact icon name.
func (t *Table) Lookup(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	g, ok := t.glyphs[name]
	return g, ok
}

// Len returns the number of icons in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.glyphs)
}

// Names returns the icon names in sorted order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.glyphs))
	for name := range t.glyphs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
