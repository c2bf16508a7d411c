package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/heftdev/heft/internal/bloat"
	"github.com/heftdev/heft/internal/platform"
)

func TestScanSkipsMissingCaches(t *testing.T) {
	home := t.TempDir()
	p := &platform.Platform{OS: platform.Linux, HomeDir: home, TempDir: os.TempDir()}

	npmCache := filepath.Join(home, ".npm")
	if err := os.MkdirAll(npmCache, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(npmCache, "x"), make([]byte, 42), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	d := New()
	cfg := &bloat.Config{Platform: p, Disabled: map[string]bool{}}
	result := d.Scan(context.Background(), cfg)

	var found bool
	for _, e := range result.Entries {
		if e.Name == "npm cache" {
			found = true
			if e.SizeBytes != 42 {
				t.Fatalf("got size %d, want 42", e.SizeBytes)
			}
		}
		if e.Name == "yarn cache" {
			t.Fatalf("yarn cache should not be present when the directory does not exist")
		}
	}
	if !found {
		t.Fatalf("expected npm cache entry, got %+v", result.Entries)
	}
}

func TestScanHonorsCacheOverride(t *testing.T) {
	home := t.TempDir()
	override := t.TempDir()
	if err := os.WriteFile(filepath.Join(override, "x"), make([]byte, 7), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	p := &platform.Platform{OS: platform.Linux, HomeDir: home, TempDir: os.TempDir()}

	d := New()
	cfg := &bloat.Config{
		Platform:       p,
		CacheOverrides: map[string]string{"npm": override},
	}
	result := d.Scan(context.Background(), cfg)

	for _, e := range result.Entries {
		if e.Name == "npm cache" && e.Path != override {
			t.Fatalf("got path %q, want override %q", e.Path, override)
		}
	}
}
