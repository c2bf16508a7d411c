package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/heftdev/heft/internal/platform"
)

func TestLoadFileMissingIsNotError(t *testing.T) {
	fc, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}
	if len(fc.Roots) != 0 {
		t.Fatalf("expected zero-value config, got %+v", fc)
	}
}

func TestLoadFileParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
roots = ["/home/dev/code"]
timeout_seconds = 10
verbose = true

[caches]
npm = "/custom/npm"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(fc.Roots) != 1 || fc.Roots[0] != "/home/dev/code" {
		t.Fatalf("got roots %v", fc.Roots)
	}
	if fc.TimeoutSeconds == nil || *fc.TimeoutSeconds != 10 {
		t.Fatalf("got timeout %v", fc.TimeoutSeconds)
	}
	if fc.Caches["npm"] != "/custom/npm" {
		t.Fatalf("got caches %v", fc.Caches)
	}
}

func TestResolveCLIOverridesFile(t *testing.T) {
	plat := &platform.Platform{OS: platform.Linux, HomeDir: "/home/dev", TempDir: "/tmp"}
	file := FileConfig{Roots: []string{"/from/file"}}
	flagTimeout := 5 * time.Second
	flags := Flags{Roots: []string{"/from/flag"}, Timeout: &flagTimeout}

	cfg := Resolve(file, flags, plat)

	if len(cfg.Roots) != 1 || cfg.Roots[0] != "/from/flag" {
		t.Fatalf("got roots %v, want CLI flag to win", cfg.Roots)
	}
	if cfg.SubprocessTimeout != flagTimeout {
		t.Fatalf("got timeout %v, want %v", cfg.SubprocessTimeout, flagTimeout)
	}
}

func TestResolveDefaultsToHomeWhenNoRootsGiven(t *testing.T) {
	plat := &platform.Platform{OS: platform.Linux, HomeDir: "/home/dev", TempDir: "/tmp"}
	cfg := Resolve(FileConfig{}, Flags{}, plat)
	if len(cfg.Roots) != 1 || cfg.Roots[0] != "/home/dev" {
		t.Fatalf("got roots %v, want default to home", cfg.Roots)
	}
}

func TestResolveNoDockerFlagDisablesDocker(t *testing.T) {
	plat := &platform.Platform{OS: platform.Linux, HomeDir: "/home/dev", TempDir: "/tmp"}
	noDocker := true
	cfg := Resolve(FileConfig{}, Flags{NoDocker: &noDocker}, plat)
	if cfg.DockerEnabled {
		t.Fatalf("expected docker to be disabled by --no-docker")
	}
}

func TestResolveDisableListMergesFileAndFlags(t *testing.T) {
	plat := &platform.Platform{OS: platform.Linux, HomeDir: "/home/dev", TempDir: "/tmp"}
	file := FileConfig{Disable: []string{"docker"}}
	flags := Flags{Disable: []string{"package-cache"}}
	cfg := Resolve(file, flags, plat)

	if !cfg.Disable("docker") || !cfg.Disable("package-cache") {
		t.Fatalf("expected both file and flag disabled detectors to be merged, got %+v", cfg.Disabled)
	}
}
