package cmd

import (
	"context"
	"fmt"
	"io"

	"gitlab.com/flib99/i3-workspace-names/internal/config"
	"gitlab.com/flib99/i3-workspace-names/internal/glyph"
	"gitlab.com/flib99/i3-workspace-names/internal/icons"
	"gitlab.com/flib99/i3-workspace-names/internal/label"
	"gitlab.com/flib99/i3-workspace-names/internal/rules"
	"gitlab.com/flib99/i3-workspace-names/internal/style"
	"gitlab.com/flib99/i3-workspace-names/internal/wm"
)

// newClient connects to the window manager. Tests replace it.
var newClient = func(socketPath string) wm.Client {
	return wm.New(socketPath)
}

// loadGlyphs returns the cached Font Awesome glyphs with the custom icons
// laid over them, downloading the cache first if there is none.
func loadGlyphs(ctx context.Context, w io.Writer, s *config.Settings) (*glyph.Table, error) {
	path := s.IconCachePath()
	base, fetched, err := icons.LoadOrRefresh(ctx, s.IconURL, path)
	if err != nil {
		return nil, fmt.Errorf("loading icons: %w", err)
	}
	if fetched {
		style.PrintAction(w, "Downloaded %d icons to %s", len(base), path)
	}

	custom, err := icons.LoadCustom(s.CustomIconsPath())
	if err != nil {
		return nil, err
	}
	return icons.Table(base, custom), nil
}

// loadRules reads the rules file, creating it from the example on first
// use.
func loadRules(w io.Writer) (*rules.RuleSet, error) {
	path := rulesPath()
	created, err := config.EnsureRules(path)
	if err != nil {
		return nil, err
	}
	if created {
		style.PrintAction(w, "Created example rules in %s", path)
	}
	return rules.Load(path)
}

// loadLabeler builds the labeler for the current settings. onError, when
// set, receives per-window title problems.
func loadLabeler(ctx context.Context, w io.Writer, s *config.Settings, onError label.ErrorFunc) (*label.Labeler, error) {
	rs, err := loadRules(w)
	if err != nil {
		return nil, err
	}
	glyphs, err := loadGlyphs(ctx, w, s)
	if err != nil {
		return nil, err
	}

	opts := []label.Option{label.WithTitles(s.ShowTitles)}
	if onError != nil {
		opts = append(opts, label.WithErrorFunc(onError))
	}
	return label.NewLabeler(rs, glyphs, opts...), nil
}
