// Package icons downloads and caches the Font Awesome icon table and loads
// the user's custom icon overrides.
//
// The cache file is a flat JSON object of icon name -> glyph character,
// written atomically next to a .lock file that serializes refreshes.
package icons

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Common errors
var (
	ErrFetch    = errors.New("fetching icon metadata")
	ErrMetadata = errors.New("invalid icon metadata")
)

// FetchTimeout bounds a single metadata download.
const FetchTimeout = 30 * time.Second

// maxMetadataSize caps the metadata body; the upstream file is a few MB.
const maxMetadataSize = 64 << 20

var httpClient = &http.Client{Timeout: FetchTimeout}

// FetchResult is the outcome of converting a metadata document.
type FetchResult struct {
	// Glyphs maps icon names to their single-character glyph.
	Glyphs map[string]string
	// Skipped counts entries without a usable code point.
	Skipped int
}

// Fetch downloads the Font Awesome metadata document at url and converts it.
func Fetch(ctx context.Context, url string) (*FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}
	return ParseMetadata(body)
}

// ParseMetadata converts a Font Awesome metadata document, an object of
// icon name -> {"unicode": "<hex>", ...}, into a glyph map.
func ParseMetadata(data []byte) (*FetchResult, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrMetadata)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrMetadata)
	}

	res := &FetchResult{Glyphs: make(map[string]string)}
	doc.ForEach(func(name, entry gjson.Result) bool {
		glyph, ok := codePoint(entry.Get("unicode").String())
		if name.String() == "" || !ok {
			res.Skipped++
			return true
		}
		res.Glyphs[name.String()] = glyph
		return true
	})
	return res, nil
}

// codePoint turns a hex code point such as "f269" into its character.
func codePoint(hex string) (string, bool) {
	if hex == "" {
		return "", false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return "", false
	}
	r := rune(n)
	if !utf8.ValidRune(r) {
		return "", false
	}
	return string(r), true
}
