// Package manifest regenerates the build manifest from the project
// configuration.
//
// The manifest lives at a fixed path inside the watched tree, so writing it
// produces a change event of its own. The supervisor deliberately does not
// suppress that event; see the supervisor loop for the consequences.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/steveyegge/stoker/internal/config"
	"github.com/steveyegge/stoker/internal/constants"
	"github.com/steveyegge/stoker/internal/util"
)

// Reloader regenerates the manifest artifact from a configuration.
// Errors are fatal to the dev session and propagate to the caller.
type Reloader interface {
	Reload(cfg config.Config) error
}

// Writer renders the manifest as Stoker.lock in the project directory.
type Writer struct {
	Dir string
}

// lockFile is the rendered shape of the manifest.
type lockFile struct {
	Package lockPackage `toml:"package"`
	Build   lockBuild   `toml:"build"`
	Bundle  lockBundle  `toml:"bundle"`
}

type lockPackage struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

type lockBuild struct {
	Runner   string   `toml:"runner"`
	Features []string `toml:"features"`
}

type lockBundle struct {
	TrayVariant      string `toml:"tray-variant,omitempty"`
	DeploymentTarget string `toml:"deployment-target,omitempty"`
}

// Path returns the manifest location for this writer.
func (w *Writer) Path() string {
	return filepath.Join(w.Dir, constants.ManifestFileName)
}

// Reload renders the manifest for cfg and writes it atomically. The write is
// skipped when the rendered content matches what is already on disk, so an
// unchanged configuration regenerates nothing.
func (w *Writer) Reload(cfg config.Config) error {
	content, err := render(cfg)
	if err != nil {
		return fmt.Errorf("rendering manifest: %w", err)
	}

	path := w.Path()
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		return nil
	}

	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", constants.ManifestFileName, err)
	}
	return nil
}

func render(cfg config.Config) ([]byte, error) {
	lf := lockFile{
		Package: lockPackage{
			Name:    cfg.Package.ProductName,
			Version: cfg.Package.Version,
		},
		Build: lockBuild{
			Runner:   cfg.Build.Runner,
			Features: cfg.Build.Features,
		},
		Bundle: lockBundle{
			TrayVariant:      cfg.Bundle.TrayVariant,
			DeploymentTarget: cfg.Bundle.MacOS.MinimumSystemVersion,
		},
	}

	var buf bytes.Buffer
	buf.WriteString("# Generated by stoker from " + constants.ConfigFileName + ". Do not edit.\n")
	if err := toml.NewEncoder(&buf).Encode(lf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
