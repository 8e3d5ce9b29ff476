package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/steveyegge/stoker/internal/config"
)

func TestDefaultIgnoreFileCreatedOnce(t *testing.T) {
	path, err := ensureDefaultIgnoreFile()
	if err != nil {
		t.Fatalf("ensureDefaultIgnoreFile: %v", err)
	}
	first, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	// Second call must leave the existing file alone.
	if _, err := ensureDefaultIgnoreFile(); err != nil {
		t.Fatalf("second ensureDefaultIgnoreFile: %v", err)
	}
	second, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !first.ModTime().Equal(second.ModTime()) {
		t.Error("default ignore file was rewritten on second use")
	}
}

func TestDefaultPatterns(t *testing.T) {
	s, err := New(config.Env{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dir := t.TempDir()
	cases := []struct {
		name    string
		isDir   bool
		ignored bool
	}{
		{"target", true, true},
		{"node_modules", true, true},
		{".git", true, true},
		{".DS_Store", false, true},
		{"main.swp", false, true},
		{"src", true, false},
		{"stoker.toml", false, false},
		{"main.rs", false, false},
	}
	for _, tc := range cases {
		if got := s.Ignored(dir, tc.name, tc.isDir); got != tc.ignored {
			t.Errorf("Ignored(%q, isDir=%v) = %v, want %v", tc.name, tc.isDir, got, tc.ignored)
		}
	}
}

func TestCustomIgnoreFilePerDirectory(t *testing.T) {
	s, err := New(config.Env{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dir := t.TempDir()
	custom := filepath.Join(dir, ".stokerignore")
	if err := os.WriteFile(custom, []byte("generated/\n*.tmp\n"), 0644); err != nil {
		t.Fatalf("write .stokerignore: %v", err)
	}

	if !s.Ignored(dir, "generated", true) {
		t.Error("generated/ should be ignored by the directory's .stokerignore")
	}
	if !s.Ignored(dir, "scratch.tmp", false) {
		t.Error("*.tmp should be ignored by the directory's .stokerignore")
	}

	// Rules do not leak into other directories.
	other := t.TempDir()
	if s.Ignored(other, "generated", true) {
		t.Error("custom rules should stay scoped to their directory")
	}
}

func TestEnvOverrideFile(t *testing.T) {
	extra := filepath.Join(t.TempDir(), "extra-ignore")
	if err := os.WriteFile(extra, []byte("assets\n"), 0644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	s, err := New(config.Env{WatcherIgnoreFile: extra})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !s.Ignored(t.TempDir(), "assets", true) {
		t.Error("override file patterns should apply")
	}
	// Override adds to, never replaces, the defaults.
	if !s.Ignored(t.TempDir(), "target", true) {
		t.Error("default patterns should still apply with an override present")
	}
}

func TestEnvOverrideFileMissing(t *testing.T) {
	_, err := New(config.Env{WatcherIgnoreFile: filepath.Join(t.TempDir(), "nope")})
	if err == nil {
		t.Fatal("dangling override file should be an error")
	}
}
