package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `
[package]
product-name = "boiler"
version = "0.2.0"

[build]
runner = "cargo"
features = ["tray-icon"]
before-dev-command = "true"

[bundle]
tray-variant = "ayatana"

[bundle.macos]
minimum-system-version = "10.13"
`

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "stoker.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, sampleConfig)

	h, err := Load(dir, "", Env{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg := h.Current()
	if cfg.Package.ProductName != "boiler" {
		t.Errorf("product name = %q, want %q", cfg.Package.ProductName, "boiler")
	}
	if cfg.Build.Runner != "cargo" {
		t.Errorf("runner = %q, want cargo", cfg.Build.Runner)
	}
	if len(cfg.Build.Features) != 1 || cfg.Build.Features[0] != "tray-icon" {
		t.Errorf("features = %v, want [tray-icon]", cfg.Build.Features)
	}
	if cfg.Bundle.MacOS.MinimumSystemVersion != "10.13" {
		t.Errorf("minimum system version = %q", cfg.Bundle.MacOS.MinimumSystemVersion)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir(), "", Env{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	h, err := Load(t.TempDir(), path, Env{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h.Path() != path {
		t.Errorf("path = %q, want %q", h.Path(), path)
	}
}

func TestLoadDefaultsRunner(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[package]\nproduct-name = \"x\"\n")

	h, err := Load(dir, "", Env{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := h.Current().Build.Runner; got != "cargo" {
		t.Errorf("runner = %q, want default cargo", got)
	}
}

func TestEnvOverridesWinOnReload(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, sampleConfig)

	env := Env{TrayVariant: "appindicator", SigningIdentity: "Developer ID"}
	h, err := Load(dir, "", env)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := h.Current().Bundle.TrayVariant; got != "appindicator" {
		t.Errorf("tray variant = %q, want env override", got)
	}
	if got := h.Current().Bundle.MacOS.SigningIdentity; got != "Developer ID" {
		t.Errorf("signing identity = %q, want env override", got)
	}

	// Overrides survive a reload of changed file content.
	if err := os.WriteFile(path, []byte(sampleConfig+"\n# touched\n"), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := h.Current().Bundle.TrayVariant; got != "appindicator" {
		t.Errorf("tray variant after reload = %q, want env override", got)
	}
}

func TestReloadParseFailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, sampleConfig)

	h, err := Load(dir, "", Env{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := os.WriteFile(path, []byte("[package\nbroken"), 0644); err != nil {
		t.Fatalf("corrupt config: %v", err)
	}
	if err := h.Reload(); err == nil {
		t.Fatal("Reload should fail on broken toml")
	}
	if got := h.Current().Package.ProductName; got != "boiler" {
		t.Errorf("previous config lost after failed reload: product = %q", got)
	}
}
