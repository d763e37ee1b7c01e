// Package rules loads the user's labeling rules: which icon each window
// class gets, which title fragments become icons, and which literal
// strings are rewritten.
//
// The rules file is JSON with three required top-level objects:
//
//	{
//	  "apps":           { "<window class>": "<icon name>" },
//	  "icon_replace":   { "<title fragment>": "<icon name>" },
//	  "string_replace": { "<literal>": "<replacement>" }
//	}
//
// Comments and trailing commas are tolerated. Entry order inside
// icon_replace and string_replace is significant and follows the document.
package rules

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

// ErrMalformed is returned when a rules document is missing a required key
// or has the wrong shape.
var ErrMalformed = errors.New("malformed rule set")

// Top-level keys of the rules document.
const (
	KeyApps          = "apps"
	KeyIconReplace   = "icon_replace"
	KeyStringReplace = "string_replace"
)

// Pair is one ordered rule entry.
type Pair struct {
	Key   string
	Value string
}

// RuleSet is the immutable set of labeling rules.
type RuleSet struct {
	appIcons      map[string]string
	apps          []Pair
	iconReplace   []Pair
	stringReplace []Pair
}

// New builds a RuleSet from ordered pairs. A later duplicate app class
// replaces an earlier one.
func New(apps, iconReplacements, stringReplacements []Pair) *RuleSet {
	rs := &RuleSet{
		appIcons:      make(map[string]string, len(apps)),
		apps:          append([]Pair(nil), apps...),
		iconReplace:   append([]Pair(nil), iconReplacements...),
		stringReplace: append([]Pair(nil), stringReplacements...),
	}
	for _, p := range apps {
		rs.appIcons[p.Key] = p.Value
	}
	return rs
}

// AppIcon returns the icon name configured for a window class.
func (r *RuleSet) AppIcon(class string) (string, bool) {
	if r == nil {
		return "", false
	}
	name, ok := r.appIcons[class]
	return name, ok
}

// Apps returns the class -> icon name entries in document order.
func (r *RuleSet) Apps() []Pair {
	if r == nil {
		return nil
	}
	return append([]Pair(nil), r.apps...)
}

// IconReplacements returns the pattern -> icon name entries in order.
func (r *RuleSet) IconReplacements() []Pair {
	if r == nil {
		return nil
	}
	return append([]Pair(nil), r.iconReplace...)
}

// StringReplacements returns the literal -> replacement entries in order.
func (r *RuleSet) StringReplacements() []Pair {
	if r == nil {
		return nil
	}
	return append([]Pair(nil), r.stringReplace...)
}

// Load reads and parses a rules file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the operator's own flags
	if err != nil {
		return nil, fmt.Errorf("reading rules %s: %w", path, err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing rules %s: %w", path, err)
	}
	return rs, nil
}

// Parse parses a rules document.
func Parse(data []byte) (*RuleSet, error) {
	stripped := jsonc.ToJSON(data)
	if !gjson.ValidBytes(stripped) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	doc := gjson.ParseBytes(stripped)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object", ErrMalformed)
	}

	apps, err := pairs(doc, KeyApps)
	if err != nil {
		return nil, err
	}
	icons, err := pairs(doc, KeyIconReplace)
	if err != nil {
		return nil, err
	}
	strs, err := pairs(doc, KeyStringReplace)
	if err != nil {
		return nil, err
	}

	return New(apps, icons, strs), nil
}

// pairs extracts the string entries of a required object key in order. A
// key given more than once keeps the position of its first occurrence and
// the value of its last.
func pairs(doc gjson.Result, key string) ([]Pair, error) {
	obj := doc.Get(key)
	if !obj.Exists() {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformed, key)
	}
	if !obj.IsObject() {
		return nil, fmt.Errorf("%w: %q must be an object", ErrMalformed, key)
	}

	var out []Pair
	seen := make(map[string]int)
	var bad error
	obj.ForEach(func(k, v gjson.Result) bool {
		if v.Type != gjson.String {
			bad = fmt.Errorf("%w: %s[%q] must be a string, got %s", ErrMalformed, key, k.String(), v.Type)
			return false
		}
		if i, ok := seen[k.String()]; ok {
			out[i].Value = v.String()
			return true
		}
		seen[k.String()] = len(out)
		out = append(out, Pair{Key: k.String(), Value: v.String()})
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return out, nil
}
