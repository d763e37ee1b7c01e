package label

import (
	"errors"
	"testing"

	"gitlab.com/flib99/i3-workspace-names/internal/glyph"
	"gitlab.com/flib99/i3-workspace-names/internal/rules"
)

const firefoxGlyph = "\uf269"

func appRules(pairs ...rules.Pair) *rules.RuleSet {
	return rules.New(pairs, nil, nil)
}

func TestLabelWithoutTitles(t *testing.T) {
	rs := appRules(rules.Pair{Key: "Alacritty", Value: "terminal"})
	glyphs := glyph.New(map[string]string{"terminal": "A"})

	tests := []struct {
		name string
		ws   Workspace
		want string
	}{
		{
			name: "mapped and unmapped",
			ws: Workspace{Num: 2, Name: "2", Windows: []Window{
				{Class: "Alacritty", Title: "zsh"},
				{Class: "xterm", Title: "bash"},
			}},
			want: "2: A xterm  ",
		},
		{
			name: "no windows",
			ws:   Workspace{Num: 3, Name: "3: old label"},
			want: "3",
		},
		{
			name: "unmapped only",
			ws:   Workspace{Num: 1, Windows: []Window{{Class: "Gimp"}}},
			want: "1: Gimp  ",
		},
		{
			name: "named workspace without number",
			ws:   Workspace{Num: -1, Name: "mail", Windows: []Window{{Class: "Alacritty"}}},
			want: "-1: A ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.ws, rs, glyphs, false); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLabelMissingIcon(t *testing.T) {
	rs := appRules(rules.Pair{Key: "Slack", Value: "slack"})
	ws := Workspace{Num: 4, Windows: []Window{{Class: "Slack", Title: "general"}}}

	if got := Label(ws, rs, glyph.New(nil), false); got != "4: N/A " {
		t.Errorf("Label() = %q, want %q", got, "4: N/A ")
	}
}

func TestLabelWithTitles(t *testing.T) {
	rs := appRules(rules.Pair{Key: "firefox", Value: "firefox"})
	glyphs := glyph.New(map[string]string{"firefox": firefoxGlyph})

	ws := Workspace{Num: 1, Windows: []Window{
		{Class: "firefox", Title: "Mozilla Firefox Nightly"},
		{Class: "xterm", Title: "bash"},
	}}

	// "Firefox" is itself an icon name, so the token pass swaps it too
	// before the title is cut to 15 characters.
	want := "1: " + firefoxGlyph + " Mozilla " + firefoxGlyph + " Night " + "xterm  bash "
	if got := Label(ws, rs, glyphs, true); got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}

func TestLabelTitleWithoutMatches(t *testing.T) {
	rs := appRules(rules.Pair{Key: "firefox", Value: "firefox"})
	glyphs := glyph.New(map[string]string{"firefox": firefoxGlyph})

	ws := Workspace{Num: 7, Windows: []Window{{Class: "firefox", Title: "Mozilla Browser Window"}}}

	want := "7: " + firefoxGlyph + " Mozilla Browser "
	if got := Label(ws, rs, glyphs, true); got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}

func TestLabelMissingGlyphDoesNotAbort(t *testing.T) {
	rs := rules.New(
		[]rules.Pair{{Key: "kitty", Value: "terminal"}},
		[]rules.Pair{{Key: "htop", Value: "chart"}},
		nil,
	)
	glyphs := glyph.New(map[string]string{"terminal": "T"})

	var seen []error
	l := NewLabeler(rs, glyphs, WithTitles(true), WithErrorFunc(func(ws Workspace, win Window, err error) {
		if ws.Num != 5 || win.Title != "htop" {
			t.Errorf("observer got ws %d window %q", ws.Num, win.Title)
		}
		seen = append(seen, err)
	}))

	ws := Workspace{Num: 5, Windows: []Window{
		{Class: "kitty", Title: "htop"},
		{Class: "kitty", Title: "vim"},
	}}

	want := "5: T htop T vim "
	if got := l.Label(ws); got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
	// Only the window whose title contains the pattern reports it.
	if len(seen) != 1 {
		t.Fatalf("observer called %d times, want 1", len(seen))
	}
	if !errors.Is(seen[0], ErrMissingGlyph) {
		t.Errorf("observer error = %v, want ErrMissingGlyph", seen[0])
	}
}

func TestLabelAll(t *testing.T) {
	l := NewLabeler(rules.New(nil, nil, nil), glyph.New(nil))

	got := l.LabelAll([]Workspace{
		{Num: 1, Windows: []Window{{Class: "a"}}},
		{Num: 2},
	})
	want := []string{"1: a  ", "2"}
	if len(got) != len(want) {
		t.Fatalf("LabelAll() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LabelAll()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIcon(t *testing.T) {
	rs := appRules(
		rules.Pair{Key: "code", Value: "code"},
		rules.Pair{Key: "ghost", Value: "nope"},
	)
	l := NewLabeler(rs, glyph.New(map[string]string{"code": "C"}))

	tests := []struct {
		class string
		want  string
	}{
		{"code", "C"},
		{"ghost", MissingIcon},
		{"Code", "Code "},
		{"", " "},
	}

	for _, tt := range tests {
		if got := l.Icon(tt.class); got != tt.want {
			t.Errorf("Icon(%q) = %q, want %q", tt.class, got, tt.want)
		}
	}
}

func TestLabelUsesOverrideGlyphs(t *testing.T) {
	rs := appRules(rules.Pair{Key: "kitty", Value: "terminal"})
	base := glyph.New(map[string]string{"terminal": "B"})
	custom := glyph.New(map[string]string{"terminal": "C"})

	got := Label(Workspace{Num: 1, Windows: []Window{{Class: "kitty"}}}, rs, glyph.Merge(base, custom), false)
	if got != "1: C " {
		t.Errorf("Label() = %q, want %q", got, "1: C ")
	}
}
