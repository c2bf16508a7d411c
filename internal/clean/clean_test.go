package clean

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/heftdev/heft/internal/bloat"
	"github.com/heftdev/heft/internal/platform"
)

func TestValidatePathRejectsSymlink(t *testing.T) {
	home := t.TempDir()
	real := filepath.Join(home, "real")
	if err := os.MkdirAll(real, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	link := filepath.Join(home, "link")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	p := &platform.Platform{HomeDir: home, TempDir: os.TempDir()}
	if err := ValidatePath(link, p); err == nil {
		t.Fatalf("expected symlink to be refused")
	}
}

func TestValidatePathRejectsHomeItself(t *testing.T) {
	home := t.TempDir()
	p := &platform.Platform{HomeDir: home, TempDir: os.TempDir()}
	if err := ValidatePath(home, p); err == nil {
		t.Fatalf("expected deleting home itself to be refused")
	}
}

func TestValidatePathRejectsRelative(t *testing.T) {
	p := &platform.Platform{HomeDir: "/home/dev", TempDir: "/tmp"}
	if err := ValidatePath("relative/path", p); err == nil {
		t.Fatalf("expected relative path to be refused")
	}
}

func TestValidatePathAcceptsDirectoryUnderHome(t *testing.T) {
	home := t.TempDir()
	target := filepath.Join(home, "project", "node_modules")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	p := &platform.Platform{HomeDir: home, TempDir: os.TempDir()}
	if err := ValidatePath(target, p); err != nil {
		t.Fatalf("expected valid path to be accepted, got %v", err)
	}
}

func TestRunDryRunDeletesNothing(t *testing.T) {
	home := t.TempDir()
	target := filepath.Join(home, "project", "node_modules")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	e := New(&platform.Platform{HomeDir: home, TempDir: os.TempDir()})
	entries := []bloat.Entry{{Category: bloat.ProjectArtifact, Path: target, Kind: bloat.KindFilesystemPath, ReclaimableBytes: 100}}

	var out bytes.Buffer
	result := e.Run(context.Background(), entries, DryRun, nil, &bytes.Buffer{}, &out)

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("dry run must not delete: %v", err)
	}
	if result.BytesFreed != 100 {
		t.Fatalf("got bytes freed %d, want 100", result.BytesFreed)
	}
	if len(result.Deleted) != 0 {
		t.Fatalf("dry run must report zero actually-deleted paths")
	}
}

func TestRunYesDeletesApprovedCategory(t *testing.T) {
	home := t.TempDir()
	target := filepath.Join(home, "project", "node_modules")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	e := New(&platform.Platform{HomeDir: home, TempDir: os.TempDir()})
	entries := []bloat.Entry{{Category: bloat.ProjectArtifact, Path: target, Kind: bloat.KindFilesystemPath, ReclaimableBytes: 100}}

	result := e.Run(context.Background(), entries, Yes, nil, &bytes.Buffer{}, &bytes.Buffer{})

	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatalf("expected target to be deleted, stat err=%v", err)
	}
	if len(result.Deleted) != 1 {
		t.Fatalf("got %d deleted, want 1", len(result.Deleted))
	}
}

func TestRunCategoryFilter(t *testing.T) {
	home := t.TempDir()
	keep := filepath.Join(home, "keep", "node_modules")
	drop := filepath.Join(home, "drop", "npmcache")
	if err := os.MkdirAll(keep, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(drop, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	e := New(&platform.Platform{HomeDir: home, TempDir: os.TempDir()})
	entries := []bloat.Entry{
		{Category: bloat.ProjectArtifact, Path: keep, Kind: bloat.KindFilesystemPath, ReclaimableBytes: 10},
		{Category: bloat.PackageCache, Path: drop, Kind: bloat.KindFilesystemPath, ReclaimableBytes: 20},
	}

	result := e.Run(context.Background(), entries, Yes, map[bloat.Category]bool{bloat.PackageCache: true}, &bytes.Buffer{}, &bytes.Buffer{})

	if _, err := os.Stat(keep); err != nil {
		t.Fatalf("non-selected category must survive: %v", err)
	}
	if _, err := os.Stat(drop); !os.IsNotExist(err) {
		t.Fatalf("selected category must be deleted")
	}
	if result.BytesFreed != 20 {
		t.Fatalf("got %d bytes freed, want 20", result.BytesFreed)
	}
}
