package platform

import "testing"

func TestCachePathKnownAndUnknown(t *testing.T) {
	p := &Platform{OS: Linux, HomeDir: "/home/dev", TempDir: "/tmp"}

	path, ok := p.CachePath("npm")
	if !ok || path != "/home/dev/.npm" {
		t.Fatalf("got path=%q ok=%v, want /home/dev/.npm,true", path, ok)
	}

	if _, ok := p.CachePath("not-a-real-tool"); ok {
		t.Fatalf("expected unknown tool to report ok=false")
	}
}

func TestDockerDesktopDiskPath(t *testing.T) {
	linux := &Platform{OS: Linux, HomeDir: "/home/dev"}
	if _, ok := linux.DockerDesktopDiskPath(); ok {
		t.Fatalf("linux should not report a docker desktop disk image")
	}

	mac := &Platform{OS: MacOS, HomeDir: "/Users/dev"}
	path, ok := mac.DockerDesktopDiskPath()
	if !ok || path == "" {
		t.Fatalf("macos should report a docker desktop disk image path")
	}
}

func TestDataDirAndConfigDirAbsolute(t *testing.T) {
	p := &Platform{OS: Linux, HomeDir: "/home/dev", TempDir: "/tmp"}
	if dir := p.DataDir(); dir != "/home/dev/.local/share/heft" {
		t.Fatalf("got %q", dir)
	}
	if dir := p.ConfigDir(); dir != "/home/dev/.config/heft" {
		t.Fatalf("got %q", dir)
	}
}
