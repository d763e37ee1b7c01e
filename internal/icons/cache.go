package icons

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/tidwall/jsonc"

	"gitlab.com/flib99/i3-workspace-names/internal/glyph"
	"gitlab.com/flib99/i3-workspace-names/internal/util"
)

// ErrNoCache is returned by Load when the cache file does not exist.
var ErrNoCache = errors.New("icon cache not found")

// cacheLockTimeout bounds how long a refresh waits for another one.
const cacheLockTimeout = 10 * time.Second

// Refresh downloads the metadata at url and replaces the cache at path.
// Concurrent refreshes of the same path are serialized.
func Refresh(ctx context.Context, url, path string) (*FetchResult, error) {
	lock, err := lockCache(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	res, err := Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := util.AtomicWriteJSON(path, res.Glyphs); err != nil {
		return nil, fmt.Errorf("writing icon cache %s: %w", path, err)
	}
	return res, nil
}

// Load reads the icon cache at path.
func Load(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the operator's cache file
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoCache, path)
		}
		return nil, fmt.Errorf("reading icon cache: %w", err)
	}

	var glyphs map[string]string
	if err := json.Unmarshal(data, &glyphs); err != nil {
		return nil, fmt.Errorf("parsing icon cache %s: %w", path, err)
	}
	return glyphs, nil
}

// LoadOrRefresh reads the cache at path, downloading it first when missing.
// The bool reports whether a download happened.
func LoadOrRefresh(ctx context.Context, url, path string) (map[string]string, bool, error) {
	glyphs, err := Load(path)
	if err == nil {
		return glyphs, false, nil
	}
	if !errors.Is(err, ErrNoCache) {
		return nil, false, err
	}

	res, err := Refresh(ctx, url, path)
	if err != nil {
		return nil, false, err
	}
	return res.Glyphs, true, nil
}

// LoadCustom reads the user's icon overrides: a JSON object of icon name ->
// glyph, comments allowed. A missing file yields an empty map.
func LoadCustom(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the operator's icon file
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading custom icons: %w", err)
	}

	glyphs := map[string]string{}
	if err := json.Unmarshal(jsonc.ToJSON(data), &glyphs); err != nil {
		return nil, fmt.Errorf("parsing custom icons %s: %w", path, err)
	}
	return glyphs, nil
}

// Table merges the downloaded icons with the custom overrides.
func Table(base, custom map[string]string) *glyph.Table {
	return glyph.Merge(glyph.New(base), glyph.New(custom))
}

// lockCache takes the refresh lock next to the cache file.
func lockCache(ctx context.Context, path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ctx, cancel := context.WithTimeout(ctx, cacheLockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquiring icon cache lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("timeout waiting for icon cache lock")
	}
	return lock, nil
}
