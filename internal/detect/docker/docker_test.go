package docker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/heftdev/heft/internal/bloat"
	"github.com/heftdev/heft/internal/platform"
)

func TestParseDockerSize(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"0B", 0},
		{"1kB", 1000},
		{"1.5MB", 1_500_000},
		{"248.1MB (3%)", 248_100_000},
		{"141.8MB", 141_800_000},
		{"27.57MB", 27_570_000},
		{"578.6kB (2%)", 578_600},
	}

	for _, c := range cases {
		got, err := parseDockerSize(c.in)
		if err != nil {
			t.Fatalf("parseDockerSize(%q) error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("parseDockerSize(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseDockerSizeLargeGB(t *testing.T) {
	got, err := parseDockerSize("8.056GB")
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	want := uint64(8_056_000_000)
	diff := int64(got) - int64(want)
	if diff < -1 || diff > 1 {
		t.Fatalf("got %d, want ~%d", got, want)
	}
}

func TestParseDockerSizeUnknownUnit(t *testing.T) {
	if _, err := parseDockerSize("5XB"); err == nil {
		t.Fatalf("expected an error for an unknown unit")
	}
}

func TestParseSystemDFOutput(t *testing.T) {
	input := `{"Type":"Images","Size":"1.5GB","Reclaimable":"500MB"}
{"Type":"Containers","Size":"10MB","Reclaimable":"10MB"}
`
	rows, err := parseSystemDFOutput([]byte(input))
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Type != "Images" || rows[1].Type != "Containers" {
		t.Fatalf("got %+v", rows)
	}
}

func TestAvailableRespectsDockerEnabledAndDisable(t *testing.T) {
	d := New()
	cfg := &bloat.Config{DockerEnabled: true}
	if !d.Available(cfg) {
		t.Fatalf("expected docker detector to be available")
	}

	cfg.Disabled = map[string]bool{"docker": true}
	if d.Available(cfg) {
		t.Fatalf("expected docker detector to be disabled")
	}

	cfg = &bloat.Config{DockerEnabled: false}
	if d.Available(cfg) {
		t.Fatalf("expected docker detector unavailable when docker disabled via --no-docker")
	}
}

func TestScanReportsDesktopDiskImage(t *testing.T) {
	home := t.TempDir()
	diskPath := filepath.Join(home, "Library", "Containers", "com.docker.docker", "Data", "vms", "0", "data", "Docker.raw")
	if err := os.MkdirAll(filepath.Dir(diskPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(diskPath, make([]byte, 1024), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	d := New()
	cfg := &bloat.Config{
		Platform:          &platform.Platform{OS: platform.MacOS, HomeDir: home},
		DockerEnabled:     false,
		// Scan still tries `docker system df`; the 1ms timeout keeps that short.
		SubprocessTimeout: time.Millisecond,
	}
	result := d.Scan(context.Background(), cfg)

	var found bool
	for _, e := range result.Entries {
		if e.Kind == bloat.KindVMDiskImage {
			found = true
			if e.SizeBytes != 1024 {
				t.Fatalf("got size %d, want 1024", e.SizeBytes)
			}
		}
	}
	if !found {
		t.Fatalf("expected a VM disk image entry, got %+v", result.Entries)
	}
}
