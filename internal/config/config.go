// Package config loads and shares the project configuration (stoker.toml).
//
// The configuration is held behind a Handle: the supervisor loop is the only
// writer (on config-file change events), the runner reads a snapshot on every
// spawn. Environment overrides are ingested once via ReadEnv and applied as
// explicit fields; no other package reads the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/steveyegge/stoker/internal/constants"
)

// ErrNotFound indicates the project has no stoker.toml.
var ErrNotFound = errors.New("stoker.toml not found")

// Config is the parsed project configuration.
type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
	Bundle  BundleConfig  `toml:"bundle"`
}

// PackageConfig describes the application being supervised.
type PackageConfig struct {
	ProductName string `toml:"product-name"`
	Version     string `toml:"version"`
}

// BuildConfig controls how the application is compiled and spawned.
type BuildConfig struct {
	// Runner is the build tool invoked to compile and run the app.
	// Defaults to constants.DefaultRunnerBin.
	Runner string `toml:"runner"`

	// Features passed to the build tool on every spawn.
	Features []string `toml:"features"`

	// BeforeDevCommand runs once before the first spawn of a dev session.
	BeforeDevCommand string `toml:"before-dev-command"`
}

// BundleConfig carries packaging-adjacent settings the dev loop still needs.
type BundleConfig struct {
	// TrayVariant selects the tray library variant on Linux.
	TrayVariant string `toml:"tray-variant"`

	MacOS MacOSConfig `toml:"macos"`
}

// MacOSConfig holds macOS-specific settings.
type MacOSConfig struct {
	// MinimumSystemVersion is exported to the child process as the
	// deployment target when set.
	MinimumSystemVersion string `toml:"minimum-system-version"`
	SigningIdentity      string `toml:"signing-identity"`
	ProviderShortName    string `toml:"provider-short-name"`
}

// Handle is a shared, reloadable reference to the current configuration.
// Mutated only by the supervisor in response to a config-file change event.
type Handle struct {
	mu   sync.RWMutex
	path string
	cfg  Config
	env  Env
}

// Load reads the project configuration and returns a shared handle.
// explicitPath overrides the default <projectDir>/stoker.toml location.
// Environment overrides from env are applied on load and on every reload.
func Load(projectDir, explicitPath string, env Env) (*Handle, error) {
	path := explicitPath
	if path == "" {
		path = filepath.Join(projectDir, constants.ConfigFileName)
	}

	h := &Handle{path: path, env: env}
	if err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

// Reload re-reads the configuration file and swaps the shared value.
// A parse failure leaves the previous configuration in place and is fatal
// to the caller.
func (h *Handle) Reload() error {
	cfg, err := parse(h.path)
	if err != nil {
		return err
	}
	cfg.applyEnv(h.env)

	h.mu.Lock()
	h.cfg = cfg
	h.mu.Unlock()
	return nil
}

// Current returns a snapshot of the configuration.
func (h *Handle) Current() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// Path returns the configuration file path backing this handle.
func (h *Handle) Path() string {
	return h.path
}

func parse(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if cfg.Build.Runner == "" {
		cfg.Build.Runner = constants.DefaultRunnerBin
	}
	return cfg, nil
}

// applyEnv folds environment overrides into the parsed config.
// Env values win over file values, matching the packaging pipeline.
func (c *Config) applyEnv(env Env) {
	if env.TrayVariant != "" {
		c.Bundle.TrayVariant = env.TrayVariant
	}
	if env.SigningIdentity != "" {
		c.Bundle.MacOS.SigningIdentity = env.SigningIdentity
	}
	if env.ProviderShortName != "" {
		c.Bundle.MacOS.ProviderShortName = env.ProviderShortName
	}
}
