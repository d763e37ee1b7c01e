// Package label turns a snapshot of workspaces and their windows into the
// short, icon-decorated names the daemon renames workspaces to.
//
// Everything here is pure: inputs are never modified and results are
// freshly allocated, so a Labeler may be shared between goroutines.
package label

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gitlab.com/flib99/i3-workspace-names/internal/glyph"
	"gitlab.com/flib99/i3-workspace-names/internal/rules"
)

// MaxTitleLen is the number of characters a transformed title is cut to.
const MaxTitleLen = 15

// ErrMissingGlyph matches every *MissingGlyphError via errors.Is.
var ErrMissingGlyph = errors.New("missing glyph")

// MissingGlyphError reports a rule that names an icon the glyph table
// does not know.
type MissingGlyphError struct {
	Icon    string // icon name the rule resolved to
	Pattern string // icon_replace pattern, empty for app rules
}

func (e *MissingGlyphError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("no glyph for icon %q (icon_replace %q)", e.Icon, e.Pattern)
	}
	return fmt.Sprintf("no glyph for icon %q", e.Icon)
}

// Is makes errors.Is(err, ErrMissingGlyph) work.
func (e *MissingGlyphError) Is(target error) bool {
	return target == ErrMissingGlyph
}

type iconRule struct {
	pattern string
	icon    string
	re      *regexp.Regexp
}

// Transformer shortens window titles according to a rule set.
// Patterns are compiled once, so reuse a Transformer across titles.
type Transformer struct {
	icons  []iconRule
	strs   []rules.Pair
	glyphs *glyph.Table
	maxLen int
}

// NewTransformer compiles the icon_replace patterns of rs.
func NewTransformer(rs *rules.RuleSet, glyphs *glyph.Table) *Transformer {
	t := &Transformer{
		strs:   rs.StringReplacements(),
		glyphs: glyphs,
		maxLen: MaxTitleLen,
	}
	for _, p := range rs.IconReplacements() {
		if p.Key == "" {
			continue
		}
		t.icons = append(t.icons, iconRule{
			pattern: p.Key,
			icon:    p.Value,
			// QuoteMeta output always compiles
			re: regexp.MustCompile("(?i)" + regexp.QuoteMeta(p.Key)),
		})
	}
	return t
}

// Transform applies, in order: icon_replace patterns (case-insensitive
// literals), whole-token icon names, string_replace literals, then
// truncation to MaxTitleLen characters.
//
// When a matching icon_replace rule names an unknown icon, that one
// substitution is skipped and the returned error wraps a
// *MissingGlyphError for each such rule. The returned string is usable
// either way.
func (t *Transformer) Transform(title string) (string, error) {
	s := title
	var errs []error

	for _, r := range t.icons {
		g, ok := t.glyphs.Lookup(r.icon)
		if !ok {
			if r.re.MatchString(s) {
				errs = append(errs, &MissingGlyphError{Icon: r.icon, Pattern: r.pattern})
			}
			continue
		}
		s = r.re.ReplaceAllLiteralString(s, g)
	}

	// Tokens are taken before any token is replaced.
	lower := cases.Lower(language.Und)
	for _, tok := range strings.Fields(s) {
		if g, ok := t.glyphs.Lookup(lower.String(tok)); ok {
			s = strings.ReplaceAll(s, tok, g)
		}
	}

	for _, p := range t.strs {
		if p.Key == "" {
			continue
		}
		s = strings.ReplaceAll(s, p.Key, p.Value)
	}

	return Truncate(s, t.maxLen), errors.Join(errs...)
}

// Transform is a one-shot helper around NewTransformer.
func Transform(title string, rs *rules.RuleSet, glyphs *glyph.Table) (string, error) {
	return NewTransformer(rs, glyphs).Transform(title)
}

// Truncate cuts s to at most n characters (runes, not bytes).
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
