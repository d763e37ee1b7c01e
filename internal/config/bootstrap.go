package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"gitlab.com/flib99/i3-workspace-names/internal/util"
)

//go:embed defaults/config.example.json
var defaultsFS embed.FS

// ExampleRules returns the bundled example rules document.
func ExampleRules() []byte {
	data, err := defaultsFS.ReadFile("defaults/config.example.json")
	if err != nil {
		// The file is embedded at build time.
		panic(fmt.Sprintf("embedded example rules missing: %v", err))
	}
	return data
}

// WriteExampleRules writes the example rules to path. Unless force is set,
// an existing file is left alone and ErrExists is returned.
func WriteExampleRules(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := util.AtomicWriteFile(path, ExampleRules(), 0644); err != nil {
		return fmt.Errorf("writing example rules: %w", err)
	}
	return nil
}

// EnsureRules creates the rules file from the example when it does not
// exist yet. It reports whether a file was created.
func EnsureRules(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking rules file: %w", err)
	}
	if err := WriteExampleRules(path, false); err != nil {
		return false, err
	}
	return true, nil
}
